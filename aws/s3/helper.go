package s3

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/rdbms/shared"
)

type AwsS3Bucket struct {
	Name   string `errorTxt:"bucket name" mandatory:"yes"`
	Prefix string `errorTxt:"bucket prefix"`
	Region string `errorTxt:"bucket region" mandatory:"yes"`
}

func (d AwsS3Bucket) Parse() error {
	_, err := ParseDSN(fmt.Sprintf("s3://%s/%s", d.Name, d.Prefix), d.Region)
	return err
}

func (d AwsS3Bucket) GetScheme() (string, error) {
	return constants.ConnectionTypeS3, nil
}

// GetMap adds the bucket fields to m, creating m if it is nil.
func (d AwsS3Bucket) GetMap(m map[string]string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m["name"] = d.Name
	m["prefix"] = d.Prefix
	m["region"] = d.Region
	return m
}

// Url returns s3://<bucket>/<prefix>/
func (d AwsS3Bucket) Url() string {
	if d.Prefix == "" {
		return fmt.Sprintf("s3://%v/", d.Name)
	}
	return fmt.Sprintf("s3://%v/%v/", d.Name, strings.Trim(d.Prefix, "/"))
}

func (d AwsS3Bucket) String() string {
	return fmt.Sprintf("%v (region %v)", d.Url(), d.Region)
}

// NewAwsBucket reads bucket details from c.
// A connection holding a dsn, as found in 12 factor mode, is parsed with the region in c.Data["region"].
func NewAwsBucket(c *shared.ConnectionDetails) (*AwsS3Bucket, error) {
	if dsn, ok := c.Data["dsn"]; ok && c.Data["name"] == "" {
		b, err := ParseDSN(dsn, c.Data["region"])
		if err != nil {
			return nil, err
		}
		return &b, nil
	}
	b := &AwsS3Bucket{
		Name:   c.Data["name"],
		Prefix: c.Data["prefix"],
		Region: c.Data["region"],
	}
	if b.Name == "" || b.Region == "" {
		return nil, fmt.Errorf("S3 connection %q requires a bucket name and region", c.LogicalName)
	}
	return b, nil
}

// ParseDSN expects bucketPrefix to be of the form [s3://]<bucket>/<prefix>
// It returns an AwsS3Bucket populated with the components of bucketPrefix and the supplied region.
// If there is a parsing error it returns an error.
func ParseDSN(bucketPrefix string, region string) (retval AwsS3Bucket, err error) {
	expectedScheme := "s3"
	if !strings.Contains(bucketPrefix, "://") {
		bucketPrefix = expectedScheme + "://" + bucketPrefix
	}
	s3url, err := url.Parse(bucketPrefix)
	if err != nil {
		return retval, fmt.Errorf("error parsing S3 URL: %v", err)
	}
	if s3url.Scheme != expectedScheme {
		return retval, fmt.Errorf("expected S3 URL scheme %q but got %q", expectedScheme, s3url.Scheme)
	}
	if region == "" {
		return retval, fmt.Errorf("value expected for bucket region")
	}
	retval.Name = s3url.Host
	if retval.Name == "" {
		return retval, fmt.Errorf("DSN failed to parse bucket name")
	}
	retval.Prefix = strings.Trim(s3url.Path, "/")
	retval.Region = region
	return
}
