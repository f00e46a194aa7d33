package synth

import (
	"encoding/binary"
	"fmt"
	"os"
)

const (
	wavHeaderSize   = 44
	bitsPerSample   = 16
	channelCount    = 1
	bytesPerSample  = bitsPerSample / 8
	riffChunkExtra  = 36 // RIFF size field counts everything after itself except data
	pcmFormatCode   = 1
	fmtChunkPayload = 16
)

// WriteWAV concatenates chunks in order into a PCM16 mono WAV container at
// path. The sample rate is taken from the chunks; a rate mismatch between
// chunks is an error, as is an empty chunk list.
func WriteWAV(path string, chunks []Chunk) error {
	sampleRate := 0
	total := 0
	for _, chunk := range chunks {
		if len(chunk.PCM) == 0 {
			continue
		}
		if chunk.SampleRate <= 0 {
			return fmt.Errorf("chunk has invalid sample rate %d", chunk.SampleRate)
		}
		if sampleRate == 0 {
			sampleRate = chunk.SampleRate
		} else if chunk.SampleRate != sampleRate {
			return fmt.Errorf("sample rate changed mid-stream: %d then %d", sampleRate, chunk.SampleRate)
		}
		total += len(chunk.PCM)
	}
	if total == 0 || sampleRate == 0 {
		return ErrNoAudio
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	defer file.Close()

	header := make([]byte, wavHeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(riffChunkExtra+total))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], fmtChunkPayload)
	binary.LittleEndian.PutUint16(header[20:22], pcmFormatCode)
	binary.LittleEndian.PutUint16(header[22:24], channelCount)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*channelCount*bytesPerSample))
	binary.LittleEndian.PutUint16(header[32:34], channelCount*bytesPerSample)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(total))

	if _, err := file.Write(header); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	for _, chunk := range chunks {
		if len(chunk.PCM) == 0 {
			continue
		}
		if _, err := file.Write(chunk.PCM); err != nil {
			return fmt.Errorf("write wav data: %w", err)
		}
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync audio file: %w", err)
	}
	return nil
}
