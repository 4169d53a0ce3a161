package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/phone-slot-api/internal/models"
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

type sweepStoreStub struct {
	lists map[string][]models.SweepEntry
}

func newSweepStoreStub() *sweepStoreStub {
	return &sweepStoreStub{lists: map[string][]models.SweepEntry{}}
}

func (s *sweepStoreStub) Get(ctx context.Context, session string) ([]models.SweepEntry, error) {
	return s.lists[session], nil
}

func (s *sweepStoreStub) Save(ctx context.Context, session string, entries []models.SweepEntry) error {
	s.lists[session] = entries
	return nil
}

func (s *sweepStoreStub) Delete(ctx context.Context, session string) error {
	delete(s.lists, session)
	return nil
}

type studentReaderStub struct {
	bySlot map[string][]models.Student
	byQR   map[string]*models.Student
}

func (s *studentReaderStub) FindBySlot(ctx context.Context, slotID string) ([]models.Student, error) {
	return s.bySlot[slotID], nil
}

func (s *studentReaderStub) FindByQR(ctx context.Context, qrID string) (*models.Student, error) {
	return s.byQR[qrID], nil
}
