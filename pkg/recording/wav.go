// Package recording writes the per-call stereo mix, the B-leg's own
// recording, and a post-call merged file, matching spec.md's recording
// requirements.
package recording

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// wavSampleRate is the fixed G.711 sample rate every recording is written
// at; there is no sample-rate negotiation in this core.
const wavSampleRate = 8000

const wavHeaderSize = 44

// wavWriter is a minimal streaming PCM16 WAV writer: it writes a
// placeholder RIFF/data header up front, appends interleaved int16
// samples as they arrive, and patches the header's size fields in
// Finalize.
type wavWriter struct {
	f              *os.File
	channels       uint16
	sampleRate     uint32
	samplesWritten uint64 // total int16 samples across all channels
}

func createWavWriter(path string, channels uint16, sampleRate uint32) (*wavWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("recording: create %s: %w", path, err)
	}
	w := &wavWriter{f: f, channels: channels, sampleRate: sampleRate}
	if err := w.writeHeader(0); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *wavWriter) writeHeader(dataBytes uint32) error {
	var hdr [wavHeaderSize]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], 36+dataBytes)
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(hdr[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(hdr[22:24], w.channels)
	binary.LittleEndian.PutUint32(hdr[24:28], w.sampleRate)
	byteRate := w.sampleRate * uint32(w.channels) * 2
	binary.LittleEndian.PutUint32(hdr[28:32], byteRate)
	blockAlign := w.channels * 2
	binary.LittleEndian.PutUint16(hdr[32:34], blockAlign)
	binary.LittleEndian.PutUint16(hdr[34:36], 16) // bits per sample
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], dataBytes)

	if _, err := w.f.WriteAt(hdr[:], 0); err != nil {
		return fmt.Errorf("recording: write header: %w", err)
	}
	return nil
}

// WriteSample appends one int16 PCM sample (caller interleaves channels).
func (w *wavWriter) WriteSample(sample int16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(sample))
	if _, err := w.f.Write(buf[:]); err != nil {
		return fmt.Errorf("recording: write sample: %w", err)
	}
	w.samplesWritten++
	return nil
}

// Finalize patches the header's size fields to match what was written
// and closes the file.
func (w *wavWriter) Finalize() error {
	dataBytes := uint32(w.samplesWritten * 2)
	if err := w.writeHeader(dataBytes); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// wavReader reads PCM16 samples back out of a WAV file for merging.
type wavReader struct {
	f          *os.File
	channels   uint16
	sampleRate uint32
	bits       uint16
}

func openWavReader(path string) (*wavReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("recording: open %s: %w", path, err)
	}
	var hdr [wavHeaderSize]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("recording: read header of %s: %w", path, err)
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		f.Close()
		return nil, fmt.Errorf("recording: %s is not a RIFF/WAVE file", path)
	}
	r := &wavReader{
		f:          f,
		channels:   binary.LittleEndian.Uint16(hdr[22:24]),
		sampleRate: binary.LittleEndian.Uint32(hdr[24:28]),
		bits:       binary.LittleEndian.Uint16(hdr[34:36]),
	}
	return r, nil
}

// ReadSample returns the next int16 sample, or io.EOF once the file is
// exhausted.
func (r *wavReader) ReadSample() (int16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r.f, buf[:]); err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(buf[:])), nil
}

func (r *wavReader) Close() error {
	return r.f.Close()
}
