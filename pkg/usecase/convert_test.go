package usecase_test

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/towebp/pkg/domain/model"
	"github.com/m-mizutani/towebp/pkg/usecase"
)

// MockEncoder is a mock implementation of ImageEncoder
type MockEncoder struct {
	encodeFunc func(ctx context.Context, data []byte) ([]byte, error)
	calls      [][]byte
}

func (m *MockEncoder) Encode(ctx context.Context, data []byte) ([]byte, error) {
	m.calls = append(m.calls, data)
	if m.encodeFunc != nil {
		return m.encodeFunc(ctx, data)
	}
	return nil, errors.New("mock not configured")
}

func TestConvertUseCase_ConvertImage(t *testing.T) {
	tests := []struct {
		name     string
		file     *model.UploadedFile
		encoded  []byte
		encErr   error
		wantName string
		wantErr  bool
	}{
		{
			name:     "PNG file",
			file:     &model.UploadedFile{Name: "holiday.png", Data: []byte("png-bytes")},
			encoded:  []byte("webp-bytes"),
			wantName: "holiday",
		},
		{
			name:     "file name with several dots",
			file:     &model.UploadedFile{Name: "scan.2024.01.tiff", Data: []byte("tiff-bytes")},
			encoded:  []byte("webp-bytes"),
			wantName: "scan.2024.01",
		},
		{
			name:     "file name without extension",
			file:     &model.UploadedFile{Name: "image", Data: []byte("raw")},
			encoded:  []byte("webp-bytes"),
			wantName: "image",
		},
		{
			name:    "encoder failure",
			file:    &model.UploadedFile{Name: "broken.jpg", Data: []byte("garbage")},
			encErr:  errors.New("decode failed"),
			wantErr: true,
		},
		{
			name:    "missing file",
			file:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := &MockEncoder{
				encodeFunc: func(ctx context.Context, data []byte) ([]byte, error) {
					return tt.encoded, tt.encErr
				},
			}
			uc := usecase.NewConvert(enc)

			got, err := uc.ConvertImage(context.Background(), tt.file)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}

			gt.NoError(t, err).Required()
			gt.V(t, got.Name).Equal(tt.wantName)
			gt.V(t, got.Data).Equal(base64.StdEncoding.EncodeToString(tt.encoded))
			gt.A(t, enc.calls).Length(1)
			gt.V(t, string(enc.calls[0])).Equal(string(tt.file.Data))
		})
	}
}
