package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	imagePrefix = "images/"
	metaPrefix  = "items/"
	urlExpiry   = time.Hour
)

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Store keeps the image under images/<id> and the item metadata as a
// JSON object under items/<id>.json.
type S3Store struct {
	client   *minio.Client
	bucket   string
	region   string
	initOnce sync.Once
	initErr  error
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Store{client: client, bucket: bucket, region: region}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if !exists {
			s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
		}
	})
	return s.initErr
}

func (s *S3Store) Put(ctx context.Context, item Item, image []byte) error {
	if err := checkItem(item, image); err != nil {
		return err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	item.Size = int64(len(image))
	if _, err := s.client.PutObject(ctx, s.bucket, imagePrefix+item.ID, bytes.NewReader(image), item.Size, minio.PutObjectOptions{
		ContentType: item.MIMEType,
	}); err != nil {
		return fmt.Errorf("put image %s: %w", item.ID, err)
	}
	meta, err := json.Marshal(item)
	if err != nil {
		return err
	}
	if _, err := s.client.PutObject(ctx, s.bucket, metaPrefix+item.ID+".json", bytes.NewReader(meta), int64(len(meta)), minio.PutObjectOptions{
		ContentType: "application/json",
	}); err != nil {
		return fmt.Errorf("put item %s: %w", item.ID, err)
	}
	return nil
}

func (s *S3Store) read(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		code := minio.ToErrorResponse(err).Code
		if code == "NoSuchKey" || code == "NoSuchBucket" {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *S3Store) item(ctx context.Context, id string) (Item, error) {
	raw, err := s.read(ctx, metaPrefix+id+".json")
	if err != nil {
		return Item{}, err
	}
	var item Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return Item{}, fmt.Errorf("decode item %s: %w", id, err)
	}
	return item, nil
}

func (s *S3Store) Get(ctx context.Context, id string) (Item, []byte, error) {
	id = strings.TrimSpace(id)
	if err := s.ensureBucket(ctx); err != nil {
		return Item{}, nil, fmt.Errorf("ensure bucket: %w", err)
	}
	item, err := s.item(ctx, id)
	if err != nil {
		return Item{}, nil, err
	}
	image, err := s.read(ctx, imagePrefix+id)
	if err != nil {
		return Item{}, nil, err
	}
	return item, image, nil
}

func (s *S3Store) GetURL(ctx context.Context, id string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, imagePrefix+strings.TrimSpace(id), urlExpiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *S3Store) List(ctx context.Context) ([]Item, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	out := make([]Item, 0, 32)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: metaPrefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		id := strings.TrimSuffix(strings.TrimPrefix(obj.Key, metaPrefix), ".json")
		if id == "" {
			continue
		}
		item, err := s.item(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	sort.Slice(out, newestFirst(out))
	return out, nil
}
