package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func newTestS3Service(endpoint string) *S3Service {
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "test", SecretAccessKey: "test"}, nil
		}),
	})
	return NewS3Service(client)
}

func TestS3ServiceRequiresBucket(t *testing.T) {
	svc := newTestS3Service("http://127.0.0.1:1")
	ctx := context.Background()

	if err := svc.PutObject(ctx, "", "key", strings.NewReader("x"), ""); err == nil {
		t.Fatal("expected error for missing bucket")
	}
	if _, err := svc.ListObjects(ctx, "", ""); err == nil {
		t.Fatal("expected error for missing bucket")
	}
	if err := svc.DeletePrefix(ctx, "", "p/"); err == nil {
		t.Fatal("expected error for missing bucket")
	}
	if _, err := svc.GetObjectURL(ctx, "", "key", time.Minute); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}

func TestS3ServiceRefusesEmptyKeyAndPrefix(t *testing.T) {
	svc := newTestS3Service("http://127.0.0.1:1")
	ctx := context.Background()

	if err := svc.PutObject(ctx, "bucket", " / ", strings.NewReader("x"), ""); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := svc.DeletePrefix(ctx, "bucket", "  "); err == nil {
		t.Fatal("expected error for empty prefix")
	}
}

func TestS3ServicePresignsObjectURL(t *testing.T) {
	svc := newTestS3Service("http://localhost:9000")

	url, err := svc.GetObjectURL(context.Background(), "exports", "tasks/user/file.json", 5*time.Minute)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:9000/exports/tasks/user/file.json") {
		t.Fatalf("unexpected url %s", url)
	}
	if !strings.Contains(url, "X-Amz-Signature=") || !strings.Contains(url, "X-Amz-Expires=300") {
		t.Fatalf("expected signed url with expiry, got %s", url)
	}
}

func TestS3ServiceListObjects(t *testing.T) {
	var gotPrefix string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrefix = r.URL.Query().Get("prefix")
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>exports</Name>
  <Prefix>tasks/u1/</Prefix>
  <KeyCount>1</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents>
    <Key>tasks/u1/tasks-1.json</Key>
    <LastModified>2024-04-10T09:00:00.000Z</LastModified>
    <Size>12</Size>
  </Contents>
</ListBucketResult>`))
	}))
	defer server.Close()

	svc := newTestS3Service(server.URL)
	objects, err := svc.ListObjects(context.Background(), "exports", "tasks/u1/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotPrefix != "tasks/u1/" {
		t.Fatalf("expected prefix tasks/u1/, got %q", gotPrefix)
	}
	if len(objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(objects))
	}
	if objects[0].Key != "tasks/u1/tasks-1.json" || objects[0].Size != 12 {
		t.Fatalf("unexpected object: %+v", objects[0])
	}
	if objects[0].LastModified == nil {
		t.Fatal("expected last modified")
	}
}
