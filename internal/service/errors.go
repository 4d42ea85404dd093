package service

import "errors"

// ErrArchiveDisabled is returned by record lookups when the deployment runs
// without a database.
var ErrArchiveDisabled = errors.New("prescription archiving is disabled")
