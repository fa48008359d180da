// Package dynamo stores appointments in a single DynamoDB table keyed by
// insured person (PK "INSURED#<id>") and appointment slot (SK "SCHEDULE#<id>").
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"appointments/internal/appointment"
	"appointments/internal/types"
)

const (
	partitionPrefix = "INSURED#"
	sortPrefix      = "SCHEDULE#"
)

// DynamoDBClient is the subset of the DynamoDB API used by the repository.
type DynamoDBClient interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// appointmentItem is the stored shape of an appointment.
type appointmentItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	InsuredID   string `dynamodbav:"insuredId"`
	CountryID   string `dynamodbav:"countryId"`
	ScheduleID  int64  `dynamodbav:"scheduleId"`
	CenterID    int64  `dynamodbav:"centerId"`
	SpecialtyID int64  `dynamodbav:"specialtyId"`
	MedicID     int64  `dynamodbav:"medicId"`
	Date        string `dynamodbav:"date"`
	Status      string `dynamodbav:"status"`
	CreatedAt   string `dynamodbav:"createdAt"`
	UpdatedAt   string `dynamodbav:"updatedAt,omitempty"`
}

func partitionKey(id appointment.InsuredID) string { return partitionPrefix + id.Value() }
func sortKey(id appointment.ScheduleID) string     { return sortPrefix + id.String() }

// Repository implements appointment.Repository on DynamoDB.
type Repository struct {
	client    DynamoDBClient
	table     string
	validator appointment.DateValidator
	clock     types.Clock
	logger    types.Logger
}

var _ appointment.Repository = (*Repository)(nil)

// NewRepository creates a repository for table. Stored dates are re-validated
// with validator when items are read back; nil means ISO-8601.
func NewRepository(client DynamoDBClient, table string, validator appointment.DateValidator, logger types.Logger) *Repository {
	if validator == nil {
		validator = appointment.ISODateValidator{}
	}
	return &Repository{
		client:    client,
		table:     table,
		validator: validator,
		clock:     types.RealClock{},
		logger:    logger,
	}
}

// WithClock overrides the clock used for createdAt/updatedAt.
func (r *Repository) WithClock(c types.Clock) *Repository {
	r.clock = c
	return r
}

// FindByInsuredID returns every appointment under the insured person's
// partition in sort key order, following query pagination to the end.
func (r *Repository) FindByInsuredID(ctx context.Context, insuredID appointment.InsuredID) ([]*appointment.Appointment, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pk": &ddbtypes.AttributeValueMemberS{Value: partitionKey(insuredID)},
		},
	}

	var found []*appointment.Appointment
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.logger.Error("failed to query appointments",
				"table", r.table,
				"insured_id", insuredID.Value(),
				"error", err.Error(),
			)
			return nil, appointment.NewRepositoryError("failed to retrieve appointment data", err)
		}

		var items []appointmentItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, appointment.NewRepositoryError("failed to decode appointment data", err)
		}
		for _, item := range items {
			a, err := r.toAppointment(item)
			if err != nil {
				r.logger.Error("stored appointment failed validation",
					"pk", item.PK,
					"sk", item.SK,
					"error", err.Error(),
				)
				return nil, appointment.NewRepositoryError("failed to map stored appointment", err)
			}
			found = append(found, a)
		}
	}

	if found == nil {
		found = []*appointment.Appointment{}
	}
	return found, nil
}

func (r *Repository) toAppointment(item appointmentItem) (*appointment.Appointment, error) {
	return appointment.FromSnapshot(appointment.Snapshot{
		InsuredID:   item.InsuredID,
		CountryID:   item.CountryID,
		ScheduleID:  item.ScheduleID,
		CenterID:    item.CenterID,
		SpecialtyID: item.SpecialtyID,
		MedicID:     item.MedicID,
		Date:        item.Date,
		Estado:      item.Status,
	}, r.validator)
}

// Save writes the appointment, replacing any item with the same keys.
func (r *Repository) Save(ctx context.Context, a *appointment.Appointment) (*appointment.Appointment, error) {
	s := a.Snapshot()
	item := appointmentItem{
		PK:          partitionKey(a.InsuredID()),
		SK:          sortKey(a.ScheduleID()),
		InsuredID:   s.InsuredID,
		CountryID:   s.CountryID,
		ScheduleID:  s.ScheduleID,
		CenterID:    s.CenterID,
		SpecialtyID: s.SpecialtyID,
		MedicID:     s.MedicID,
		Date:        s.Date,
		Status:      s.Estado,
		CreatedAt:   r.clock.Now().UTC().Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, appointment.NewRepositoryError("failed to encode appointment", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	}); err != nil {
		r.logger.Error("failed to save appointment",
			"table", r.table,
			"schedule_id", a.ScheduleID().String(),
			"country", s.CountryID,
			"error", err.Error(),
		)
		return nil, appointment.NewRepositoryError("failed to persist appointment data", err)
	}

	r.logger.Info("appointment persisted",
		"pk", item.PK,
		"sk", item.SK,
		"status", item.Status,
	)
	return a, nil
}

// UpdateStatus sets the status of an existing appointment. A missing item is
// reported as APPOINTMENT_NOT_FOUND instead of being created.
func (r *Repository) UpdateStatus(ctx context.Context, insuredID appointment.InsuredID, scheduleID appointment.ScheduleID, status appointment.Status) error {
	pk, sk := partitionKey(insuredID), sortKey(scheduleID)

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: pk},
			"SK": &ddbtypes.AttributeValueMemberS{Value: sk},
		},
		UpdateExpression:    aws.String("SET #status = :status, #updatedAt = :updatedAt"),
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
		ExpressionAttributeNames: map[string]string{
			"#status":    "status",
			"#updatedAt": "updatedAt",
		},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":status":    &ddbtypes.AttributeValueMemberS{Value: status.Value()},
			":updatedAt": &ddbtypes.AttributeValueMemberS{Value: r.clock.Now().UTC().Format(time.RFC3339Nano)},
		},
		ReturnValues: ddbtypes.ReturnValueNone,
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			r.logger.Warn("appointment to update does not exist", "pk", pk, "sk", sk)
			return appointment.NewNotFoundError(insuredID.Value()).WithDetails(map[string]any{
				"schedule_id": scheduleID.String(),
			})
		}
		r.logger.Error("failed to update appointment status",
			"pk", pk,
			"sk", sk,
			"status", status.Value(),
			"error", err.Error(),
		)
		return appointment.NewRepositoryError("failed to update appointment status", err)
	}

	r.logger.Info("appointment status updated", "pk", pk, "sk", sk, "status", status.Value())
	return nil
}

// TableProbe reports whether the appointment table is reachable and active.
type TableProbe struct {
	Client DynamoDBClient
	Table  string
}

func (p TableProbe) Name() string { return "dynamodb" }

func (p TableProbe) Check(ctx context.Context) error {
	out, err := p.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(p.Table)})
	if err != nil {
		return fmt.Errorf("describe table %s: %w", p.Table, err)
	}
	if out.Table != nil && out.Table.TableStatus != ddbtypes.TableStatusActive {
		return fmt.Errorf("table %s is %s", p.Table, out.Table.TableStatus)
	}
	return nil
}
