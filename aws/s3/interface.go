//go:generate mockgen -package mocks -destination mocks/interface.go -source=interface.go
package s3

import (
	"io"
)

// BasicClient is the subset of S3 used to stage CSV files for Snowflake.
type BasicClient interface {
	Lister
	BufferPutter
	Deleter
	BucketUrl
}

type Lister interface {
	List(key string) (keys []string, err error)
}

// BufferPutter can be used to put a file to S3 since File implements Read and Seek.
type BufferPutter interface {
	BufferPut(key string, buf io.ReadSeeker) (err error)
}

type Deleter interface {
	Delete(key string) error
}

// BucketUrl returns the s3:// URL of key including the client's prefix.
type BucketUrl interface {
	Url(key string) string
}
