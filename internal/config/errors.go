package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnknownGormEngine error if db.gormEngine is not mysql, postgres or sqlite.
	ErrUnknownGormEngine = errors.New("toml config db.gormEngine is not supported")

	// ErrUnknownAssetBackend error if assets.backend is not local or s3.
	ErrUnknownAssetBackend = errors.New("toml config assets.backend must be local or s3")

	// ErrEmptyBucket error if the s3 asset backend has no bucket.
	ErrEmptyBucket = errors.New("toml config assets.s3.bucket can not be empty")
)
