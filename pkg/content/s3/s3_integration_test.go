//go:build integration

package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marmos91/filebank/pkg/content"
	"github.com/marmos91/filebank/pkg/content/backendtest"
)

// localstackEndpoint starts a LocalStack container, or reuses the one named by
// LOCALSTACK_ENDPOINT.
func localstackEndpoint(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	if endpoint := os.Getenv("LOCALSTACK_ENDPOINT"); endpoint != "" {
		return endpoint
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "localstack/localstack:3.0",
			ExposedPorts: []string{"4566/tcp"},
			Env: map[string]string{
				"SERVICES":              "s3",
				"DEFAULT_REGION":        "eu-west-1",
				"EAGER_SERVICE_LOADING": "1",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("4566/tcp"),
				wait.ForHTTP("/_localstack/health").
					WithPort("4566/tcp").
					WithStartupTimeout(60*time.Second),
			),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start localstack container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "4566")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

var bucketSeq atomic.Int64

// newBucketBackend returns a backend on a fresh bucket, bootstrapped through
// Initialize.
func newBucketBackend(t *testing.T, endpoint string) *Backend {
	t.Helper()

	b, err := NewFromConfig(t.Context(), Config{
		Bucket:          fmt.Sprintf("filebank-test-%d-%d", time.Now().Unix(), bucketSeq.Add(1)),
		Region:          "eu-west-1",
		Endpoint:        endpoint,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		ForcePathStyle:  true,
	})
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	select {
	case err := <-b.Initialize(t.Context()):
		if err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("Initialize did not complete")
	}

	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestIntegration_Conformance(t *testing.T) {
	endpoint := localstackEndpoint(t)

	backendtest.RunConformanceSuite(t, func(t *testing.T) content.Backend {
		return newBucketBackend(t, endpoint)
	})
}

func TestIntegration_InitializeIsIdempotent(t *testing.T) {
	endpoint := localstackEndpoint(t)
	b := newBucketBackend(t, endpoint)

	if err := <-b.Initialize(t.Context()); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}
	if err := b.Healthcheck(t.Context()); err != nil {
		t.Fatalf("Healthcheck failed: %v", err)
	}
}

func TestIntegration_MoveDirectoryToMissingDestinationRenames(t *testing.T) {
	ctx := t.Context()
	b := newBucketBackend(t, localstackEndpoint(t))

	src, err := b.Mkdir(ctx, "", "src")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.CreateFile(ctx, src.RefID, "a.txt", bytes.NewReader([]byte("a"))); err != nil {
		t.Fatal(err)
	}

	// Object stores do not reject a missing destination: the prefix is implicit.
	res, err := b.MoveDirectory(ctx, src, content.Item{RefID: "nowhere/", Name: "nowhere", Type: content.TypeDirectory})
	if err != nil {
		t.Fatalf("MoveDirectory failed: %v", err)
	}
	if res.Directory.RefID != "nowhere/" {
		t.Errorf("Directory.RefID = %q, want nowhere/", res.Directory.RefID)
	}
	if len(res.Items) != 1 || res.Items[0].New.RefID != "nowhere/a.txt" {
		t.Errorf("Items = %+v", res.Items)
	}
}

func TestIntegration_RmdirManyKeys(t *testing.T) {
	ctx := t.Context()
	b := newBucketBackend(t, localstackEndpoint(t))

	dir, err := b.Mkdir(ctx, "", "bulk")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < maxDeleteBatch+5; i++ {
		// MultiReader hides Seek, which exercises the spool path.
		r := io.MultiReader(strings.NewReader(fmt.Sprintf("%d", i)))
		if _, err := b.CreateFile(ctx, dir.RefID, fmt.Sprintf("f%04d", i), r); err != nil {
			t.Fatalf("CreateFile %d failed: %v", i, err)
		}
	}

	if err := b.Rmdir(ctx, dir.RefID); err != nil {
		t.Fatalf("Rmdir failed: %v", err)
	}
	ok, err := b.Exists(ctx, dir.RefID)
	if err != nil || ok {
		t.Errorf("Exists after Rmdir = %v, %v", ok, err)
	}
}
