package s3

import (
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
)

// NewBasicClient uses the default AWS credential chain to create a client for bucket.
// All keys are relative to prefix.
func NewBasicClient(bucket, region, prefix string) (BasicClient, error) {
	awsConfig := aws.NewConfig()
	awsConfig.Region = aws.String(region)
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, errors.Wrap(err, "error creating AWS session")
	}
	return NewBasicClientWithAPI(bucket, region, prefix, s3.New(sess)), nil
}

func NewBasicClientWithAPI(bucket, region, prefix string, api s3iface.S3API) BasicClient {
	return &basicClient{
		bucket: bucket,
		region: region,
		prefix: prefix,
		api:    api,
	}
}

type basicClient struct {
	region string
	bucket string
	prefix string
	api    s3iface.S3API
}

func (s *basicClient) List(key string) (keys []string, err error) {
	keys = make([]string, 0, 1000)
	lastKey := ""
	for {
		params := &s3.ListObjectsInput{
			Bucket:  aws.String(s.bucket),
			Marker:  aws.String(lastKey),
			MaxKeys: aws.Int64(1000),
			Prefix:  aws.String(s.getKeyWithPrefix(key)),
		}
		resp, err := s.api.ListObjects(params)
		if err != nil {
			return nil, errors.Wrapf(err, "error listing bucket %v", s.bucket)
		}
		for _, v := range resp.Contents {
			keys = append(keys, *v.Key)
		}
		if len(keys) > 0 {
			lastKey = keys[len(keys)-1]
		}
		if !aws.BoolValue(resp.IsTruncated) {
			break
		}
	}
	return
}

func (s *basicClient) BufferPut(key string, dataBuf io.ReadSeeker) error {
	_, err := s.api.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.getKeyWithPrefix(key)),
		Body:   dataBuf,
	})
	return errors.Wrapf(err, "error putting object %v to bucket %v", key, s.bucket)
}

func (s *basicClient) Delete(key string) error {
	_, err := s.api.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.getKeyWithPrefix(key)),
	})
	return errors.Wrapf(err, "error deleting object %v from bucket %v", key, s.bucket)
}

func (s *basicClient) Url(key string) string {
	return "s3://" + s.bucket + "/" + s.getKeyWithPrefix(key)
}

func (s *basicClient) getKeyWithPrefix(key string) string {
	if s.prefix != "" {
		return strings.TrimRight(s.prefix, "/") + "/" + key // ensure trailing slash after prefix.
	}
	return key
}
