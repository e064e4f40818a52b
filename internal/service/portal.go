package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// portalClient is the transport surface services depend on. *apiclient.Client
// satisfies it.
type portalClient interface {
	Get(ctx context.Context, path string, query url.Values) (interface{}, error)
	Post(ctx context.Context, path string, body interface{}) (interface{}, error)
	Put(ctx context.Context, path string, body interface{}) (interface{}, error)
	Patch(ctx context.Context, path string, query url.Values, body interface{}) (interface{}, error)
	Delete(ctx context.Context, path string) (interface{}, error)
}

func setPositive(query url.Values, key string, v int64) {
	if v > 0 {
		query.Set(key, strconv.FormatInt(v, 10))
	}
}

func setText(query url.Values, key, v string) {
	if v = strings.TrimSpace(v); v != "" {
		query.Set(key, v)
	}
}

// semesterQuery carries semesterId when the value coerces to a positive id.
func semesterQuery(semesterID interface{}) url.Values {
	query := url.Values{}
	if id := CoerceSemesterID(semesterID); id.Valid {
		setPositive(query, "semesterId", id.Int64)
	}
	return query
}
