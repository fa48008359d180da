package dynamo

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointments/internal/appointment"
	"appointments/internal/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)        {}
func (nopLogger) Error(string, ...any)       {}
func (nopLogger) Warn(string, ...any)        {}
func (l nopLogger) With(...any) types.Logger { return l }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// fakeDynamo keeps items in memory and pages query results pageSize at a time.
type fakeDynamo struct {
	items    map[string]map[string]ddbtypes.AttributeValue
	pageSize int

	queryCalls int
	puts       []*dynamodb.PutItemInput
	updates    []*dynamodb.UpdateItemInput

	queryErr  error
	putErr    error
	updateErr error
	status    ddbtypes.TableStatus
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]ddbtypes.AttributeValue{}, pageSize: 100, status: ddbtypes.TableStatusActive}
}

func keyOf(item map[string]ddbtypes.AttributeValue) string {
	return item["PK"].(*ddbtypes.AttributeValueMemberS).Value + "|" + item["SK"].(*ddbtypes.AttributeValueMemberS).Value
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queryCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	pk := in.ExpressionAttributeValues[":pk"].(*ddbtypes.AttributeValueMemberS).Value

	var keys []string
	for k, item := range f.items {
		if item["PK"].(*ddbtypes.AttributeValueMemberS).Value == pk {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ExclusiveStartKey != nil {
		last := keyOf(in.ExclusiveStartKey)
		for i, k := range keys {
			if k == last {
				start = i + 1
			}
		}
	}
	end := start + f.pageSize
	if end > len(keys) {
		end = len(keys)
	}

	out := &dynamodb.QueryOutput{}
	for _, k := range keys[start:end] {
		out.Items = append(out.Items, f.items[k])
	}
	if end < len(keys) {
		lastItem := f.items[keys[end-1]]
		out.LastEvaluatedKey = map[string]ddbtypes.AttributeValue{"PK": lastItem["PK"], "SK": lastItem["SK"]}
	}
	return out, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.items[keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	item, ok := f.items[keyOf(in.Key)]
	if !ok {
		return nil, &ddbtypes.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	item["status"] = in.ExpressionAttributeValues[":status"]
	item["updatedAt"] = in.ExpressionAttributeValues[":updatedAt"]
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{Table: &ddbtypes.TableDescription{TableName: in.TableName, TableStatus: f.status}}, nil
}

var testNow = time.Date(2025, 11, 3, 14, 0, 0, 0, time.UTC)

func newTestRepo(f *fakeDynamo) *Repository {
	return NewRepository(f, "appointments", nil, nopLogger{}).WithClock(fixedClock{testNow})
}

func newAppointment(t *testing.T, insured string, schedule int64) *appointment.Appointment {
	t.Helper()
	a, err := appointment.FromSnapshot(appointment.Snapshot{
		InsuredID:   insured,
		CountryID:   "PE",
		ScheduleID:  schedule,
		CenterID:    101,
		SpecialtyID: 105,
		MedicID:     201,
		Date:        "2025-12-25T10:00:00Z",
	}, nil)
	require.NoError(t, err)
	return a
}

func TestSave_WritesKeysAndCreatedAt(t *testing.T) {
	f := newFakeDynamo()
	repo := newTestRepo(f)
	a := newAppointment(t, "12345", 98701)

	saved, err := repo.Save(context.Background(), a)

	require.NoError(t, err)
	assert.Same(t, a, saved)
	require.Len(t, f.puts, 1)
	assert.Equal(t, "appointments", aws.ToString(f.puts[0].TableName))

	var item appointmentItem
	require.NoError(t, attributevalue.UnmarshalMap(f.puts[0].Item, &item))
	assert.Equal(t, "INSURED#12345", item.PK)
	assert.Equal(t, "SCHEDULE#98701", item.SK)
	assert.Equal(t, "pending", item.Status)
	assert.Equal(t, "PE", item.CountryID)
	assert.Equal(t, int64(101), item.CenterID)
	assert.Equal(t, "2025-11-03T14:00:00Z", item.CreatedAt)
}

func TestSave_Failure(t *testing.T) {
	f := newFakeDynamo()
	f.putErr = errors.New("ProvisionedThroughputExceededException")

	_, err := newTestRepo(f).Save(context.Background(), newAppointment(t, "12345", 1))

	assert.ErrorIs(t, err, appointment.ErrRepository)
	assert.Contains(t, err.Error(), "ProvisionedThroughputExceededException")
	assert.ErrorIs(t, err, f.putErr)
}

func TestFindByInsuredID_RoundTripAcrossPages(t *testing.T) {
	f := newFakeDynamo()
	f.pageSize = 2
	repo := newTestRepo(f)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		_, err := repo.Save(ctx, newAppointment(t, "12345", i))
		require.NoError(t, err)
	}
	_, err := repo.Save(ctx, newAppointment(t, "99999", 42))
	require.NoError(t, err)

	insured, _ := appointment.NewInsuredID("12345")
	got, err := repo.FindByInsuredID(ctx, insured)

	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, 3, f.queryCalls)
	ids := make([]string, 0, len(got))
	for _, a := range got {
		ids = append(ids, a.ScheduleID().String())
		assert.Equal(t, "12345", a.InsuredID().Value())
		assert.True(t, a.Status().IsPending())
	}
	assert.ElementsMatch(t, []string{"1", "2", "3", "4", "5"}, ids)

	original := newAppointment(t, "12345", 1)
	for _, a := range got {
		if a.ScheduleID().Value() == 1 {
			assert.Equal(t, original.Snapshot(), a.Snapshot())
		}
	}
}

func TestFindByInsuredID_Empty(t *testing.T) {
	insured, _ := appointment.NewInsuredID("00000")
	got, err := newTestRepo(newFakeDynamo()).FindByInsuredID(context.Background(), insured)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindByInsuredID_QueryFailure(t *testing.T) {
	f := newFakeDynamo()
	f.queryErr = errors.New("AccessDeniedException")
	insured, _ := appointment.NewInsuredID("12345")

	_, err := newTestRepo(f).FindByInsuredID(context.Background(), insured)

	assert.ErrorIs(t, err, appointment.ErrRepository)
	assert.Contains(t, err.Error(), "failed to retrieve appointment data: AccessDeniedException")
}

func TestFindByInsuredID_CorruptItem(t *testing.T) {
	f := newFakeDynamo()
	item, err := attributevalue.MarshalMap(appointmentItem{
		PK: "INSURED#12345", SK: "SCHEDULE#1", InsuredID: "12345", CountryID: "AR",
		ScheduleID: 1, CenterID: 1, SpecialtyID: 1, MedicID: 1, Date: "2025-12-25", Status: "pending",
	})
	require.NoError(t, err)
	f.items[keyOf(item)] = item
	insured, _ := appointment.NewInsuredID("12345")

	_, err = newTestRepo(f).FindByInsuredID(context.Background(), insured)

	assert.ErrorIs(t, err, appointment.ErrRepository)
	assert.ErrorIs(t, err, appointment.ErrInvalidCountry)
}

func TestUpdateStatus(t *testing.T) {
	f := newFakeDynamo()
	repo := newTestRepo(f)
	ctx := context.Background()
	_, err := repo.Save(ctx, newAppointment(t, "12345", 98701))
	require.NoError(t, err)

	insured, _ := appointment.NewInsuredID("12345")
	schedule, _ := appointment.NewScheduleID(98701)
	require.NoError(t, repo.UpdateStatus(ctx, insured, schedule, appointment.StatusCompleted()))

	require.Len(t, f.updates, 1)
	in := f.updates[0]
	assert.Equal(t, "SET #status = :status, #updatedAt = :updatedAt", aws.ToString(in.UpdateExpression))
	assert.Equal(t, "status", in.ExpressionAttributeNames["#status"])

	got, err := repo.FindByInsuredID(ctx, insured)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Status().IsCompleted())
}

func TestUpdateStatus_Missing(t *testing.T) {
	insured, _ := appointment.NewInsuredID("12345")
	schedule, _ := appointment.NewScheduleID(7)

	err := newTestRepo(newFakeDynamo()).UpdateStatus(context.Background(), insured, schedule, appointment.StatusCompleted())

	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "7", appErr.Details["schedule_id"])
}

func TestUpdateStatus_Failure(t *testing.T) {
	f := newFakeDynamo()
	f.updateErr = errors.New("InternalServerError")
	insured, _ := appointment.NewInsuredID("12345")
	schedule, _ := appointment.NewScheduleID(7)

	err := newTestRepo(f).UpdateStatus(context.Background(), insured, schedule, appointment.StatusCompleted())

	assert.ErrorIs(t, err, appointment.ErrRepository)
}

func TestTableProbe(t *testing.T) {
	f := newFakeDynamo()
	p := TableProbe{Client: f, Table: "appointments"}
	assert.Equal(t, "dynamodb", p.Name())
	assert.NoError(t, p.Check(context.Background()))

	f.status = ddbtypes.TableStatusCreating
	assert.Error(t, p.Check(context.Background()))
}

func TestKeys(t *testing.T) {
	insured, _ := appointment.NewInsuredID("00042")
	schedule, _ := appointment.ParseScheduleID(strconv.Itoa(15))
	assert.Equal(t, "INSURED#00042", partitionKey(insured))
	assert.Equal(t, "SCHEDULE#15", sortKey(schedule))
}
