package s3sheet

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/pricegate/internal/common"
	"github.com/dmitrijs2005/pricegate/internal/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	objects map[string][]byte
	getErr  error
	putErr  error
	puts    int
	lastCT  string
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}}
}

func (f *fakeBucket) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeBucket) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	f.puts++
	f.lastCT = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestMissingObjectIsEmptySheet(t *testing.T) {
	s := New(newFakeBucket(), "users", "")

	rows, err := s.ReadAllRows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, DefaultKey, s.key)
}

func TestAppendUploadsCSVWithHeader(t *testing.T) {
	b := newFakeBucket()
	s := New(b, "users", "sheet.csv")
	ctx := context.Background()

	require.NoError(t, s.AppendRow(ctx, directory.Row{Username: "jdoe", Name: "Jane", Surname: "Doe", Email: "j@x.com", Password: "h1", Role: "user"}))
	require.NoError(t, s.AppendRow(ctx, directory.Row{Username: "amy", Name: "Amy, Jr.", Role: "admin"}))

	body := string(b.objects["users/sheet.csv"])
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(common.Header, ","), lines[0])
	assert.Equal(t, "jdoe,Jane,Doe,j@x.com,h1,user", lines[1])
	assert.Equal(t, `amy,"Amy, Jr.",,,,admin`, lines[2])
	assert.Equal(t, "text/csv", b.lastCT)
	assert.Equal(t, 2, b.puts)

	rows, err := s.ReadAllRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Amy, Jr.", rows[1].Name)
}

func TestReadsSheetExportWithShortRows(t *testing.T) {
	b := newFakeBucket()
	b.objects["users/"+DefaultKey] = []byte("username,nombre,apellido,email,password,rol\njdoe,Jane\nboss,B,S,b@x,h,admin\n")
	s := New(b, "users", "")

	rows, err := s.ReadAllRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, directory.Row{Username: "jdoe", Name: "Jane"}, rows[0])
	assert.Equal(t, "admin", rows[1].Role)
}

func TestFindAndDelete(t *testing.T) {
	b := newFakeBucket()
	s := New(b, "users", "")
	ctx := context.Background()

	for _, u := range []string{"amy", "jdoe", "zed"} {
		require.NoError(t, s.AppendRow(ctx, directory.Row{Username: u}))
	}

	h, found, err := s.FindRow(ctx, "jdoe")
	require.NoError(t, err)
	require.True(t, found)
	require.NoError(t, s.DeleteRow(ctx, h))

	rows, err := s.ReadAllRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "zed", rows[1].Username)

	assert.True(t, errors.Is(s.DeleteRow(ctx, h), common.ErrUserNotFound))

	_, found, err = s.FindRow(ctx, "jdoe")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBackendErrorsPropagate(t *testing.T) {
	b := newFakeBucket()
	s := New(b, "users", "")
	ctx := context.Background()

	b.getErr = errors.New("access denied")
	_, err := s.ReadAllRows(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")

	b.getErr = nil
	b.putErr = errors.New("quota")
	err = s.AppendRow(ctx, directory.Row{Username: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put s3://users/")
}

func TestMalformedCSV(t *testing.T) {
	b := newFakeBucket()
	b.objects["users/"+DefaultKey] = []byte("username,nombre\n\"unterminated,x\n")
	s := New(b, "users", "")

	_, err := s.ReadAllRows(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse sheet")
}

func TestOpen_RequiresBucket(t *testing.T) {
	_, err := Open(context.Background(), Options{})
	require.Error(t, err)
}

func TestOpen_AppliesOptions(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minio", creds.AccessKeyID)
		return aws.Config{Region: lo.Region}, nil
	}

	fake := newFakeBucket()
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) ObjectAPI {
		var o s3.Options
		for _, fn := range optFns {
			fn(&o)
		}
		assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(o.BaseEndpoint))
		assert.True(t, o.UsePathStyle)
		return fake
	}

	s, err := Open(context.Background(), Options{
		Bucket:    "users",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minio",
		SecretKey: "minio-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultKey, s.key)
	assert.Same(t, fake, s.api)
}

func TestOpen_ConfigError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := Open(context.Background(), Options{Bucket: "users"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load aws config")
}
