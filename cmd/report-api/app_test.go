package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/RobertKano/logisticapis/internal/broker/messages"
	"github.com/RobertKano/logisticapis/internal/models"
	"github.com/RobertKano/logisticapis/internal/storage/pgreport"
)

type fakeService struct {
	mu      sync.Mutex
	snap    models.ReportSnapshot
	snapErr error

	applied []messages.ReportUpdated
	added   []models.ShipmentRecord
	updated []models.ShipmentRecord
	deleted []string

	manualErr error
}

func (f *fakeService) Latest(ctx context.Context) (models.ReportSnapshot, error) {
	return f.snap, f.snapErr
}
func (f *fakeService) ApplyUpdate(ctx context.Context, msg messages.ReportUpdated) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, msg)
	return nil
}

func (f *fakeService) appliedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied)
}
func (f *fakeService) AddManual(ctx context.Context, rec models.ShipmentRecord) (models.ShipmentRecord, error) {
	if f.manualErr != nil {
		return models.ShipmentRecord{}, f.manualErr
	}
	f.added = append(f.added, rec)
	return rec, nil
}
func (f *fakeService) UpdateManual(ctx context.Context, rec models.ShipmentRecord) (models.ShipmentRecord, error) {
	if f.manualErr != nil {
		return models.ShipmentRecord{}, f.manualErr
	}
	f.updated = append(f.updated, rec)
	return rec, nil
}
func (f *fakeService) DeleteManual(ctx context.Context, id string) error {
	if f.manualErr != nil {
		return f.manualErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeConsumer struct {
	messages [][]byte
}

func (f *fakeConsumer) Consume(ctx context.Context, handler func(key, value []byte) error) error {
	for _, m := range f.messages {
		if err := handler(nil, m); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func writeSwagger(t *testing.T) string {
	t.Helper()
	sw := filepath.Join(t.TempDir(), "swagger.json")
	require.NoError(t, os.WriteFile(sw, []byte(`{"swagger":"2.0"}`), 0o600))
	return sw
}

func TestRouter_Latest(t *testing.T) {
	svc := &fakeService{snap: models.ReportSnapshot{
		Metadata: models.ReportMetadata{CreatedAt: "27.02.2026 12:00:00", ActiveCount: 1},
		Active:   []models.ShipmentRecord{{ID: "a-1", TK: "ПЭК"}},
		Archive:  []models.ShipmentRecord{},
	}}
	srv := httptest.NewServer(newRouter(svc, writeSwagger(t)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/latest")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var snap models.ReportSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	require.Equal(t, 1, snap.Metadata.ActiveCount)
	require.Equal(t, "a-1", snap.Active[0].ID)
}

func TestRouter_ManualMutations(t *testing.T) {
	svc := &fakeService{}
	srv := httptest.NewServer(newRouter(svc, writeSwagger(t)))
	defer srv.Close()

	body, _ := json.Marshal(models.ShipmentRecord{ID: "MEMO-1", Sender: "ЗАМЕТКА", IsManual: true})
	resp, err := http.Post(srv.URL+"/admin/add-manual", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
	require.Len(t, svc.added, 1)

	resp, err = http.Post(srv.URL+"/admin/update-manual", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
	require.Len(t, svc.updated, 1)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/admin/delete-manual/MEMO-1", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, []string{"MEMO-1"}, svc.deleted)
}

func TestRouter_ManualNotFound(t *testing.T) {
	svc := &fakeService{manualErr: pgreport.ErrManualNotFound}
	srv := httptest.NewServer(newRouter(svc, writeSwagger(t)))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/admin/delete-manual/nope", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 404, resp.StatusCode)
}

func TestRouter_BadJSON(t *testing.T) {
	srv := httptest.NewServer(newRouter(&fakeService{}, writeSwagger(t)))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/admin/add-manual", "application/json", bytes.NewReader([]byte("{broken")))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 400, resp.StatusCode)
}

func TestRunReportAPI_ConsumerAndSwagger(t *testing.T) {
	svc := &fakeService{}
	msg, _ := json.Marshal(messages.ReportUpdated{ActiveCount: 2})
	consumer := &fakeConsumer{messages: [][]byte{msg}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- runReportAPI(ctx, reportAPIOpts{
			httpAddr:    "127.0.0.1:0",
			swaggerPath: writeSwagger(t),
			topic:       "report.updated",
			onListen:    func(addr string) { addrCh <- addr },
		}, svc, consumer)
	}()

	addr := <-addrCh
	require.Eventually(t, func() bool { return svc.appliedCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, 2, svc.applied[0].ActiveCount)

	resp, err := http.Get("http://" + addr + "/swagger.json")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
	require.Contains(t, string(body), `"swagger"`)

	cancel()
	select {
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting server to stop")
	case <-errCh:
	}
}
