// questions/loader.go
package questions

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ReadSeed fetches the question seed from a local path or an s3://bucket/key
// URI, so deployed runners can pull the bank from the same bucket the ops
// tooling publishes to.
func ReadSeed(ctx context.Context, cfg awssdk.Config, uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "s3://") {
		return readS3Seed(ctx, cfg, uri)
	}

	data, err := os.ReadFile(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to read question seed %s: %w", uri, err)
	}
	return data, nil
}

func readS3Seed(ctx context.Context, cfg awssdk.Config, uri string) ([]byte, error) {
	bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, "s3://"), "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("malformed seed URI %q, want s3://bucket/key", uri)
	}

	out, err := s3.NewFromConfig(cfg).GetObject(ctx, &s3.GetObjectInput{
		Bucket: awssdk.String(bucket),
		Key:    awssdk.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch question seed from %s: %w", uri, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read question seed body: %w", err)
	}
	return data, nil
}
