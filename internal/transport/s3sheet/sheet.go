// Package s3sheet keeps the user table as a CSV "sheet" object in an
// S3-compatible bucket (AWS S3, MinIO). The object is read whole and written
// whole: appends and deletes download the sheet, edit it and upload it
// again. Concurrent writers are last-writer-wins.
package s3sheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/pricegate/internal/common"
	"github.com/dmitrijs2005/pricegate/internal/directory"
)

// DefaultKey is the object name of the users sheet export.
const DefaultKey = "db_usuarios_app.csv"

// ObjectAPI is the part of *s3.Client the sheet uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Options struct {
	Bucket    string
	Key       string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) ObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type Sheet struct {
	api    ObjectAPI
	bucket string
	key    string
}

// New builds a sheet on top of an existing client.
func New(api ObjectAPI, bucket, key string) *Sheet {
	if key == "" {
		key = DefaultKey
	}
	return &Sheet{api: api, bucket: bucket, key: key}
}

// Open configures an S3 client from opts (static credentials, optional
// custom endpoint with path-style addressing) and returns the sheet.
func Open(ctx context.Context, opts Options) (*Sheet, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return New(client, opts.Bucket, opts.Key), nil
}

func (s *Sheet) download(ctx context.Context) ([]directory.Row, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	return decode(out.Body)
}

func (s *Sheet) upload(ctx context.Context, rows []directory.Row) error {
	body, err := encode(rows)
	if err != nil {
		return err
	}
	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}

func decode(r io.Reader) ([]directory.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse sheet: %w", err)
	}

	rows := make([]directory.Row, 0, len(records))
	for i, rec := range records {
		if i == 0 && isHeader(rec) {
			continue
		}
		rows = append(rows, directory.RowFromValues(rec))
	}
	return rows, nil
}

func encode(rows []directory.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(common.Header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(r.Values()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode sheet: %w", err)
	}
	return buf.Bytes(), nil
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), common.ColumnUsername)
}

func (s *Sheet) ReadAllRows(ctx context.Context) ([]directory.Row, error) {
	return s.download(ctx)
}

func (s *Sheet) AppendRow(ctx context.Context, r directory.Row) error {
	rows, err := s.download(ctx)
	if err != nil {
		return err
	}
	return s.upload(ctx, append(rows, r))
}

func (s *Sheet) FindRow(ctx context.Context, key string) (directory.RowHandle, bool, error) {
	rows, err := s.download(ctx)
	if err != nil {
		return directory.RowHandle{}, false, err
	}
	if i := indexOf(rows, key); i >= 0 {
		return directory.RowHandle{ID: int64(i), Key: key}, true, nil
	}
	return directory.RowHandle{}, false, nil
}

func (s *Sheet) DeleteRow(ctx context.Context, h directory.RowHandle) error {
	rows, err := s.download(ctx)
	if err != nil {
		return err
	}

	i := int(h.ID)
	if i < 0 || i >= len(rows) || common.Normalize(rows[i].Username) != h.Key {
		i = indexOf(rows, h.Key)
	}
	if i < 0 {
		return common.ErrUserNotFound
	}
	return s.upload(ctx, append(rows[:i], rows[i+1:]...))
}

func (s *Sheet) Close() error { return nil }

func indexOf(rows []directory.Row, key string) int {
	for i, r := range rows {
		if common.Normalize(r.Username) == key {
			return i
		}
	}
	return -1
}
