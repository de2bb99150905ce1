package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"

	"distro-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ArchiveService exports finalized day summaries as CSV to
// S3-compatible object storage (R2/MinIO/AWS) for audit.
type ArchiveService struct {
	client *s3.Client
	bucket string
}

func NewArchiveService(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string) (*ArchiveService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("configuring s3 client: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &ArchiveService{client: client, bucket: bucket}, nil
}

// ArchiveSummary writes one summary as day-closes/<date>/route-<id>[-driver-<id>].csv.
func (s *ArchiveService) ArchiveSummary(ctx context.Context, summary *models.DaySummary) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write([]string{
		"product_id", "product_name",
		"start_box", "start_pcs", "sold_box", "sold_pcs",
		"remaining_box", "remaining_pcs", "revenue",
	})
	for _, item := range summary.Items {
		_ = w.Write([]string{
			strconv.Itoa(item.ProductID), item.ProductName,
			strconv.Itoa(item.StartBox), strconv.Itoa(item.StartPcs),
			strconv.Itoa(item.SoldBox), strconv.Itoa(item.SoldPcs),
			strconv.Itoa(item.RemainingBox), strconv.Itoa(item.RemainingPcs),
			fmt.Sprintf("%.2f", item.TotalRevenue),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	key := fmt.Sprintf("day-closes/%s/route-%d.csv", summary.Date, summary.RouteID)
	if summary.DriverID != nil {
		key = fmt.Sprintf("day-closes/%s/route-%d-driver-%d.csv", summary.Date, summary.RouteID, *summary.DriverID)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	log.Printf("[Archive] uploaded %s (%d rows)", key, len(summary.Items))
	return nil
}
