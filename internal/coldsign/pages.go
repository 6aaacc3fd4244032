package coldsign

import (
	"github.com/AlexZinkM/ergo-wallet/internal/chunk"
	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

// RequestPages renders req as QR page texts
func RequestPages(req *model.ColdSigningRequest, maxFragmentBytes int) ([]string, error) {
	chunks, err := EncodeRequest(req, maxFragmentBytes)
	if err != nil {
		return nil, err
	}
	return chunk.FormatPages(chunk.TypeColdSigningRequest, chunks)
}

// DecodeRequestPages parses a full set of request page texts
func DecodeRequestPages(pages []string) (*model.ColdSigningRequest, error) {
	chunks, err := chunk.ParsePages(chunk.TypeColdSigningRequest, pages)
	if err != nil {
		return nil, err
	}
	return DecodeRequest(chunks)
}

// ResultPages renders res as QR page texts
func ResultPages(res *model.ColdSigningResult, maxFragmentBytes int) ([]string, error) {
	chunks, err := EncodeResult(res, maxFragmentBytes)
	if err != nil {
		return nil, err
	}
	return chunk.FormatPages(chunk.TypeColdSigningResult, chunks)
}

// DecodeResultPages parses a full set of result page texts
func DecodeResultPages(pages []string) (*model.ColdSigningResult, error) {
	chunks, err := chunk.ParsePages(chunk.TypeColdSigningResult, pages)
	if err != nil {
		return nil, err
	}
	return DecodeResult(chunks)
}
