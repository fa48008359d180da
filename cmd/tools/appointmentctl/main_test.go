package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointments/internal/types"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sqs.SendMessageOutput{MessageId: aws.String("sqs-1")}, nil
}

type fakeRecords struct {
	records  []*types.ProcessingRecord
	migrated bool
	closed   bool
}

func (f *fakeRecords) ListByInsuredID(_ context.Context, _ string, _ int) ([]*types.ProcessingRecord, error) {
	return f.records, nil
}

func (f *fakeRecords) EnsureSchema(context.Context) error {
	f.migrated = true
	return nil
}

func newTestCLI(apiURL string) (*cli, *bytes.Buffer, *fakeSQS, *fakeRecords) {
	out := &bytes.Buffer{}
	q := &fakeSQS{}
	recs := &fakeRecords{}
	c := &cli{
		out:        out,
		httpClient: http.DefaultClient,
		newSQS:     func(context.Context) (SQSSender, error) { return q, nil },
		newRecords: func(context.Context) (RecordLister, func(), error) {
			return recs, func() { recs.closed = true }, nil
		},
	}
	c.apiURL = apiURL
	return c, out, q, recs
}

func execute(t *testing.T, c *cli, args ...string) error {
	t.Helper()
	if c.apiURL != "" {
		args = append(args, "--api", c.apiURL)
	}
	root := c.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestRegister(t *testing.T) {
	var got registerRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/appointments", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"message":"appointment for 12345 received and in process","id":"98701"}`))
	}))
	defer srv.Close()
	c, out, _, _ := newTestCLI(srv.URL)

	err := execute(t, c, "register", "--insured", "12345", "--schedule", "98701", "--country", "PE",
		"--center", "101", "--specialty", "105", "--medic", "201", "--date", "2025-12-25T10:00:00Z")

	require.NoError(t, err)
	assert.Equal(t, registerRequest{
		InsuredID: "12345", ScheduleID: 98701, CountryISO: "PE",
		CenterID: 101, SpecialtyID: 105, MedicID: 201, Date: "2025-12-25T10:00:00Z",
	}, got)
	assert.Contains(t, out.String(), "appointment for 12345 received and in process (id 98701)")
}

func TestRegister_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"InvalidCountryError","message":"country AR is not supported","code":"INVALID_COUNTRY"}`))
	}))
	defer srv.Close()
	c, _, _, _ := newTestCLI(srv.URL)

	err := execute(t, c, "register", "--insured", "12345", "--schedule", "1", "--country", "AR",
		"--center", "1", "--specialty", "1", "--medic", "1", "--date", "2025-12-25")

	var failure *apiFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "INVALID_COUNTRY", failure.Code)
	assert.Equal(t, http.StatusBadRequest, failure.status)
}

func TestFind_Table(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appointments/12345", r.URL.Path)
		_, _ = w.Write([]byte(`[{"insuredId":"12345","countryId":"CL","scheduleId":98701,"centerId":1,"specialtyId":2,"medicId":3,"date":"2025-12-25","estado":"completed"}]`))
	}))
	defer srv.Close()
	c, out, _, _ := newTestCLI(srv.URL)

	require.NoError(t, execute(t, c, "find", "12345"))

	assert.Contains(t, out.String(), "98701")
	assert.Contains(t, out.String(), "completed")
	assert.Contains(t, out.String(), "TOTAL")
}

func TestConfirm(t *testing.T) {
	c, out, q, _ := newTestCLI("")

	err := execute(t, c, "confirm", "--queue-url", "https://sqs.local/confirmations", "--insured", "12345", "--schedule", "98701")

	require.NoError(t, err)
	require.Len(t, q.inputs, 1)
	assert.Equal(t, "https://sqs.local/confirmations", aws.ToString(q.inputs[0].QueueUrl))

	var env types.EventEnvelope
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(q.inputs[0].MessageBody)), &env))
	assert.Equal(t, "com.appointment.processor", env.Source)
	assert.Equal(t, "DB_SAVE_SUCCESS", env.DetailType)
	var detail types.SavedDetail
	require.NoError(t, env.DecodeDetail(&detail))
	assert.Equal(t, types.FlexString("98701"), detail.ScheduleID)
	assert.Contains(t, out.String(), "sqs-1")
}

func TestConfirm_RejectsNonNumericSchedule(t *testing.T) {
	c, _, q, _ := newTestCLI("")

	err := execute(t, c, "confirm", "--queue-url", "u", "--insured", "12345", "--schedule", "abc")

	assert.Error(t, err)
	assert.Empty(t, q.inputs)
}

func TestRecords(t *testing.T) {
	c, out, _, recs := newTestCLI("")
	recs.records = []*types.ProcessingRecord{{
		ID: 7, MessageID: "m-1", ScheduleID: "98701", CountryID: "PE",
		QueueSource: "appointments-pe", Status: types.RecordStatusSaved,
		SentAt: time.Date(2025, 11, 3, 14, 0, 0, 0, time.UTC),
	}}

	require.NoError(t, execute(t, c, "records", "12345"))

	assert.Contains(t, out.String(), "m-1")
	assert.Contains(t, out.String(), "2025-11-03T14:00:00Z")
	assert.True(t, recs.closed)
}

func TestMigrate(t *testing.T) {
	c, out, _, recs := newTestCLI("")

	require.NoError(t, execute(t, c, "migrate"))

	assert.True(t, recs.migrated)
	assert.Contains(t, out.String(), "schema applied")
}
