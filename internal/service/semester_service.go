package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/volatiletech/null/v8"

	appErrors "github.com/noah-isme/uniportal/pkg/errors"
)

// SemesterService answers semester lookups.
type SemesterService struct {
	api portalClient
}

// NewSemesterService creates a semester service.
func NewSemesterService(api portalClient) *SemesterService {
	return &SemesterService{api: api}
}

// NextSemesterID returns the semester following current. A 404 or a payload
// without an identifier yields an invalid value.
func (s *SemesterService) NextSemesterID(ctx context.Context, current interface{}) (null.Int64, error) {
	id := CoerceSemesterID(current)
	if !id.Valid {
		return null.Int64{}, nil
	}
	payload, err := s.api.Get(ctx, "/semester/"+url.PathEscape(strconv.FormatInt(id.Int64, 10))+"/next", nil)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return null.Int64{}, nil
		}
		return null.Int64{}, err
	}
	return semesterIDFrom(payload), nil
}

// semesterIDFrom reads data.semesterId, data, semesterId or the bare value.
func semesterIDFrom(payload interface{}) null.Int64 {
	if obj, ok := payload.(map[string]interface{}); ok {
		if inner, ok := obj["data"]; ok {
			if v := semesterIDFrom(inner); v.Valid {
				return v
			}
		}
		if v, ok := obj["semesterId"]; ok {
			return CoerceSemesterID(v)
		}
		return null.Int64{}
	}
	return CoerceSemesterID(payload)
}
