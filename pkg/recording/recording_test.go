package recording

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTempRecordingsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) })
	return dir
}

func TestRecorderWritesValidWavHeader(t *testing.T) {
	withTempRecordingsDir(t)
	r := NewRecorder("call-a")
	require.NoError(t, r.Start())

	frame := make([]byte, 160)
	for i := range frame {
		frame[i] = 0xFF // mu-law silence
	}
	r.PushRxMulaw(frame)
	r.PushTxMulaw(frame)
	r.FlushTick()
	require.NoError(t, r.Stop())

	reader, err := openWavReader(r.FilePath())
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, uint16(2), reader.channels)
	assert.Equal(t, uint32(wavSampleRate), reader.sampleRate)
	assert.Equal(t, uint16(16), reader.bits)
}

func TestRecorderWriteMetaJSON(t *testing.T) {
	withTempRecordingsDir(t)
	r := NewRecorder("call-b")
	require.NoError(t, r.Start())
	r.PushRxMulaw(make([]byte, 160))
	r.FlushTick()
	require.NoError(t, r.Stop())

	data, err := os.ReadFile(filepath.Join(r.DirPath(), "meta.json"))
	require.NoError(t, err)

	var meta recordingMeta
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, "call-b", meta.CallID)
	assert.Equal(t, "mixed.wav", meta.Files.Mixed)
	assert.Equal(t, uint32(wavSampleRate), meta.SampleRate)
}

func TestBLegRecorderDoesNotWriteMeta(t *testing.T) {
	withTempRecordingsDir(t)
	r := NewRecorderWithFile("call-c", "b_leg.wav", false)
	require.NoError(t, r.Start())
	r.PushRxMulaw(make([]byte, 160))
	r.FlushTick()
	require.NoError(t, r.Stop())

	_, err := os.Stat(filepath.Join(r.DirPath(), "meta.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestMergeStereoFilesProducesFourChannelOutput(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.wav")
	bPath := filepath.Join(dir, "b.wav")
	outPath := filepath.Join(dir, "merged.wav")

	writeStereoFixture(t, aPath, 4)
	writeStereoFixture(t, bPath, 4)

	require.NoError(t, MergeStereoFiles(aPath, bPath, outPath))

	reader, err := openWavReader(outPath)
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, uint16(4), reader.channels)

	count := 0
	for {
		_, err := reader.ReadSample()
		if err != nil {
			break
		}
		count++
	}
	assert.Equal(t, 4*4, count) // 4 frames * 4 channels
}

func TestMergeStereoFilesZeroFillsShorterInput(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.wav")
	bPath := filepath.Join(dir, "b.wav")
	outPath := filepath.Join(dir, "merged.wav")

	writeStereoFixture(t, aPath, 6)
	writeStereoFixture(t, bPath, 2)

	require.NoError(t, MergeStereoFiles(aPath, bPath, outPath))

	reader, err := openWavReader(outPath)
	require.NoError(t, err)
	defer reader.Close()

	count := 0
	for {
		_, err := reader.ReadSample()
		if err != nil {
			break
		}
		count++
	}
	assert.Equal(t, 6*4, count)
}

func TestManagerStartMainAndFlush(t *testing.T) {
	withTempRecordingsDir(t)
	m := NewManager("call-d")
	require.NoError(t, m.StartMain())
	assert.True(t, m.IsStarted())

	m.PushRx(make([]byte, 160))
	m.PushTx(make([]byte, 160))
	m.FlushTick()

	m.EnsureBLeg()
	require.NoError(t, m.StartBLeg())
	m.PushBLegRx(make([]byte, 160))
	m.FlushTick()

	assert.Empty(t, m.TakeErrors())
}

func writeStereoFixture(t *testing.T, path string, frames int) {
	t.Helper()
	w, err := createWavWriter(path, 2, wavSampleRate)
	require.NoError(t, err)
	for i := 0; i < frames; i++ {
		require.NoError(t, w.WriteSample(int16(i)))
		require.NoError(t, w.WriteSample(int16(-i)))
	}
	require.NoError(t, w.Finalize())
}
