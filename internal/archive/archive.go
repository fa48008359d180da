// Package archive keeps a compressed copy of every processed queue message in
// S3 under "<queue>/<yyyy-mm-dd>/<messageId>.json.zst".
package archive

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/zstd"

	"appointments/internal/types"
)

// S3Client is the subset of the S3 API used by the archiver.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

const (
	keySuffix       = ".json.zst"
	contentType     = "application/json"
	contentEncoding = "zstd"
)

// S3Archiver writes raw message bodies to a bucket.
type S3Archiver struct {
	client S3Client
	bucket string
	logger types.Logger

	encoderPool sync.Pool
}

func NewS3Archiver(client S3Client, bucket string, logger types.Logger) *S3Archiver {
	return &S3Archiver{
		client: client,
		bucket: bucket,
		logger: logger,
		encoderPool: sync.Pool{
			New: func() any {
				e, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
				if err != nil {
					panic(fmt.Sprintf("failed to create zstd encoder: %v", err))
				}
				return e
			},
		},
	}
}

// Key returns the object key for msg.
func Key(msg types.ProcessedMessage) string {
	return fmt.Sprintf("%s/%s/%s%s", msg.QueueSource, msg.Timestamp.UTC().Format("2006-01-02"), msg.ID, keySuffix)
}

// Archive compresses the raw body and uploads it, returning the object key.
func (a *S3Archiver) Archive(ctx context.Context, msg types.ProcessedMessage) (string, error) {
	key := Key(msg)
	body := a.compress(msg.Raw)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(a.bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(body),
		ContentLength:   aws.Int64(int64(len(body))),
		ContentType:     aws.String(contentType),
		ContentEncoding: aws.String(contentEncoding),
		Metadata: map[string]string{
			"message-id":  msg.ID,
			"insured-id":  msg.Data.InsuredID.String(),
			"schedule-id": msg.Data.ScheduleID.String(),
		},
	})
	if err != nil {
		a.logger.Error("failed to archive message",
			"bucket", a.bucket,
			"key", key,
			"error", err.Error(),
		)
		return "", fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}
	return key, nil
}

func (a *S3Archiver) compress(raw []byte) []byte {
	enc := a.encoderPool.Get().(*zstd.Encoder)
	defer a.encoderPool.Put(enc)
	return enc.EncodeAll(raw, make([]byte, 0, len(raw)))
}

// Decompress reverses the archive encoding.
func Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	return out, nil
}

// BucketProbe reports whether the archive bucket is reachable.
type BucketProbe struct {
	Client S3Client
	Bucket string
}

func (p BucketProbe) Name() string { return "s3" }

func (p BucketProbe) Check(ctx context.Context) error {
	if _, err := p.Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.Bucket)}); err != nil {
		return fmt.Errorf("head bucket %s: %w", p.Bucket, err)
	}
	return nil
}
