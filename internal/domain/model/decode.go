package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeRecords parses a JSON array of raw records. Anything other than an
// array of objects is an ErrStructural; field contents are not validated here.
func DecodeRecords(data []byte) ([]RawRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: records must be a JSON array", ErrStructural)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructural, err)
	}
	records := make([]RawRecord, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, fmt.Errorf("%w: record %d is not an object", ErrStructural, i)
		}
		if err := json.Unmarshal(item, &records[i]); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrStructural, i, err)
		}
	}
	return records, nil
}

type cohortEnvelope struct {
	Cohort  CohortKey       `json:"cohort"`
	Records json.RawMessage `json:"records"`
}

// DecodeCohort parses either a bare array of records or an object of the form
// {"cohort": {...}, "records": [...]}. The cohort key is not validated.
func DecodeCohort(data []byte) (CohortInput, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		records, err := DecodeRecords(data)
		if err != nil {
			return CohortInput{}, err
		}
		return CohortInput{Records: records}, nil
	}
	if len(data) == 0 || data[0] != '{' {
		return CohortInput{}, fmt.Errorf("%w: cohort must be a JSON array or object", ErrStructural)
	}
	var env cohortEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return CohortInput{}, fmt.Errorf("%w: %v", ErrStructural, err)
	}
	records, err := DecodeRecords(env.Records)
	if err != nil {
		return CohortInput{}, err
	}
	return CohortInput{Cohort: env.Cohort, Records: records}, nil
}

// DecodeBatch parses a JSON array of cohort objects.
func DecodeBatch(data []byte) ([]CohortInput, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: batch must be a JSON array", ErrStructural)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructural, err)
	}
	out := make([]CohortInput, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, fmt.Errorf("%w: batch entry %d is not an object", ErrStructural, i)
		}
		in, err := DecodeCohort(item)
		if err != nil {
			return nil, fmt.Errorf("batch entry %d: %w", i, err)
		}
		out[i] = in
	}
	return out, nil
}
