package dataset

import (
	"github.com/openpbrl/openpbrl/pkg/errors"
	"github.com/openpbrl/openpbrl/pkg/utils"
)

// Encode serializes the dataset as a JSON artifact payload
func Encode(d *TransitionDataset) ([]byte, error) {
	data, err := utils.ToJSONBytes(d)
	if err != nil {
		return nil, errors.FromCode(errors.ErrArtifactPutFailed).WithCause(err)
	}
	return data, nil
}

// Decode parses a JSON artifact payload into a dataset and validates alignment
func Decode(data []byte) (*TransitionDataset, error) {
	var d TransitionDataset
	if err := utils.FromJSONBytes(data, &d); err != nil {
		return nil, errors.FromCode(errors.ErrArtifactDecodeFailed).WithCause(err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
