// Package storagesvc provides file stores backing resource uploads.
package storagesvc

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"

	"github.com/tradelore/tradelore/core"
)

type S3Store struct {
	client        *s3.S3
	bucket        string
	region        string
	publicBaseURL string
}

var _ core.FileStore = (*S3Store)(nil)

func NewS3Store(conf *core.Config) (*S3Store, error) {
	s3Conf := &aws.Config{
		Region: aws.String(conf.Storage.S3.Region),
	}
	if conf.Storage.S3.AccessKey != "" {
		s3Conf.Credentials = credentials.NewStaticCredentials(conf.Storage.S3.AccessKey, conf.Storage.S3.SecretKey, "")
	}
	if conf.Storage.S3.Endpoint != "" {
		s3Conf.Endpoint = aws.String(conf.Storage.S3.Endpoint)
		s3Conf.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(s3Conf)
	if err != nil {
		return nil, errors.Wrap(err, "creating AWS session")
	}

	return &S3Store{
		client:        s3.New(sess),
		bucket:        conf.Storage.S3.Bucket,
		region:        conf.Storage.S3.Region,
		publicBaseURL: strings.TrimSuffix(conf.Storage.S3.PublicBaseURL, "/"),
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader) (core.UploadResult, error) {
	if err := core.ValidateUpload(contentType, size); err != nil {
		return core.UploadResult{}, err
	}

	key := makeKey(filename)
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          aws.ReadSeekCloser(r),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		ACL:           aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		return core.UploadResult{}, errors.Wrap(err, "uploading to S3")
	}

	return core.UploadResult{
		Key:      key,
		URL:      s.publicURL(key),
		FileType: core.InferFileType(contentType),
	}, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return errors.Wrap(err, "deleting from S3")
}

func (s *S3Store) publicURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// makeKey builds a collision-resistant object key keeping the original extension.
func makeKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("resources/%d-%04d%s", time.Now().UnixNano(), rand.Intn(10000), ext)
}
