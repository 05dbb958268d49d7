package datarequest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationwatch/stationwatch/internal/datarequest"
	"github.com/stationwatch/stationwatch/internal/station"
)

type recordingNotifier struct {
	submitted []*datarequest.Request
	err       error
}

func (n *recordingNotifier) RequestSubmitted(_ context.Context, req *datarequest.Request) error {
	if n.err != nil {
		return n.err
	}
	n.submitted = append(n.submitted, req)
	return nil
}

func validRequest() *datarequest.Request {
	return &datarequest.Request{
		Email:        "researcher@example.org",
		Organization: "ASIET",
		Purpose:      "flood modelling study",
		StartDate:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		StationID:    "1",
		Format:       datarequest.FormatCSV,
		Parameters:   []string{"temperature", "rainfall1h"},
	}
}

func newService(t *testing.T, notifier datarequest.Notifier) *datarequest.Service {
	t.Helper()
	return datarequest.NewService(datarequest.ServiceConfig{
		Repo:     datarequest.NewMemoryRepository(),
		Stations: station.NewSeededMemoryRepository(),
		Notifier: notifier,
		Logger:   zerolog.Nop(),
	})
}

func TestService_Submit(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newService(t, notifier)

	req, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, datarequest.StatusPending, req.Status)
	require.Len(t, notifier.submitted, 1)
	assert.Equal(t, req.ID, notifier.submitted[0].ID)

	stored, err := svc.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, "researcher@example.org", stored.Email)
}

func TestService_SubmitInvalidForm(t *testing.T) {
	svc := newService(t, nil)

	bad := validRequest()
	bad.Email = "not-an-email"
	bad.Parameters = nil

	_, err := svc.Submit(context.Background(), bad)

	var verr *datarequest.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "parameters")
}

func TestService_SubmitEndBeforeStart(t *testing.T) {
	svc := newService(t, nil)

	bad := validRequest()
	bad.StartDate, bad.EndDate = bad.EndDate, bad.StartDate

	_, err := svc.Submit(context.Background(), bad)

	var verr *datarequest.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "end_date", verr.Fields[0].Field)
}

func TestService_SubmitMissingDates(t *testing.T) {
	svc := newService(t, nil)

	bad := validRequest()
	bad.StartDate = time.Time{}
	bad.EndDate = time.Time{}

	_, err := svc.Submit(context.Background(), bad)

	var verr *datarequest.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "start_date")
	assert.Contains(t, fields, "end_date")
}

func TestService_SubmitUnknownStation(t *testing.T) {
	svc := newService(t, nil)

	bad := validRequest()
	bad.StationID = "99"

	_, err := svc.Submit(context.Background(), bad)
	assert.ErrorIs(t, err, station.ErrStationNotFound)
}

func TestService_SubmitSurvivesNotifierFailure(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("topic unavailable")}
	svc := newService(t, notifier)

	req, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	// The request is stored even when the announcement fails.
	stored, err := svc.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, datarequest.StatusPending, stored.Status)
}

func TestService_Transition(t *testing.T) {
	svc := newService(t, nil)

	req, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Transition(context.Background(), req.ID, datarequest.StatusProcessing))
	require.NoError(t, svc.Transition(context.Background(), req.ID, datarequest.StatusCompleted))

	stored, err := svc.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, datarequest.StatusCompleted, stored.Status)
}

func TestService_TransitionRejectsSkippingProcessing(t *testing.T) {
	svc := newService(t, nil)

	req, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	err = svc.Transition(context.Background(), req.ID, datarequest.StatusCompleted)
	assert.Error(t, err)
}

func TestService_ListFiltersByStatus(t *testing.T) {
	svc := newService(t, nil)

	first, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Transition(context.Background(), first.ID, datarequest.StatusRejected))

	pending, err := svc.List(context.Background(), datarequest.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
