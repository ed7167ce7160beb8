package history

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"botlint/internal/aggregate"
)

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
	decoderOnce sync.Once
	decoder     *zstd.Decoder
)

func zstdEncoder() *zstd.Encoder {
	encoderOnce.Do(func() {
		encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	return encoder
}

func zstdDecoder() *zstd.Decoder {
	decoderOnce.Do(func() {
		decoder, _ = zstd.NewReader(nil)
	})
	return decoder
}

// encodeReport serializes r as zstd-compressed JSON.
func encodeReport(r *aggregate.Report) ([]byte, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return zstdEncoder().EncodeAll(raw, make([]byte, 0, len(raw)/4)), nil
}

// decodeReport reverses encodeReport.
func decodeReport(blob []byte) (*aggregate.Report, error) {
	raw, err := zstdDecoder().DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress report: %w", err)
	}
	var r aggregate.Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &r, nil
}
