package ingest

import "errors"

var ErrManagerNil = errors.New("lifecycle manager cannot be nil")
