package recording

import (
	"fmt"
	"io"
)

// MergeStereoFiles reads two stereo (2-channel) 16-bit PCM WAV files —
// the A-leg mix and the B-leg recording — and writes a 4-channel WAV
// interleaving both: A-left, A-right, B-left, B-right per frame. Either
// input running out first has its channels zero-filled for the
// remainder, so the merged file always spans the longer of the two.
func MergeStereoFiles(aPath, bPath, outPath string) error {
	a, err := openWavReader(aPath)
	if err != nil {
		return fmt.Errorf("recording: merge open a-leg: %w", err)
	}
	defer a.Close()
	b, err := openWavReader(bPath)
	if err != nil {
		return fmt.Errorf("recording: merge open b-leg: %w", err)
	}
	defer b.Close()

	if a.channels != 2 || b.channels != 2 {
		return fmt.Errorf("recording: merge expects stereo inputs (a=%dch, b=%dch)", a.channels, b.channels)
	}
	if a.sampleRate != b.sampleRate {
		return fmt.Errorf("recording: merge sample rate mismatch (a=%dHz, b=%dHz)", a.sampleRate, b.sampleRate)
	}
	if a.bits != 16 || b.bits != 16 {
		return fmt.Errorf("recording: merge expects 16-bit PCM inputs")
	}

	out, err := createWavWriter(outPath, 4, a.sampleRate)
	if err != nil {
		return fmt.Errorf("recording: merge create output: %w", err)
	}

	for {
		aL, aLOk := readSampleOrZero(a)
		aR, aROk := readSampleOrZero(a)
		bL, bLOk := readSampleOrZero(b)
		bR, bROk := readSampleOrZero(b)

		if !aLOk && !aROk && !bLOk && !bROk {
			break
		}

		_ = out.WriteSample(aL)
		_ = out.WriteSample(aR)
		_ = out.WriteSample(bL)
		_ = out.WriteSample(bR)
	}

	return out.Finalize()
}

// readSampleOrZero reads one sample, returning (0, false) at EOF so the
// caller can distinguish "both exhausted" from "still has data".
func readSampleOrZero(r *wavReader) (int16, bool) {
	sample, err := r.ReadSample()
	if err != nil {
		if err == io.EOF {
			return 0, false
		}
		return 0, false
	}
	return sample, true
}
