package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"appointments/internal/types"
)

func (c *cli) registerCmd() *cobra.Command {
	var in registerRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Schedule an appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.api().register(cmd.Context(), in)
			if err != nil {
				return err
			}
			if c.asJSON {
				return c.printJSON(out)
			}
			fmt.Fprintf(c.out, "%s (id %s)\n", out.Message, out.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.InsuredID, "insured", "", "insured id (5 characters)")
	cmd.Flags().Int64Var(&in.ScheduleID, "schedule", 0, "schedule id")
	cmd.Flags().StringVar(&in.CountryISO, "country", "", "country (PE or CL)")
	cmd.Flags().Int64Var(&in.CenterID, "center", 0, "center id")
	cmd.Flags().Int64Var(&in.SpecialtyID, "specialty", 0, "specialty id")
	cmd.Flags().Int64Var(&in.MedicID, "medic", 0, "medic id")
	cmd.Flags().StringVar(&in.Date, "date", "", "appointment date (ISO-8601)")
	for _, f := range []string{"insured", "schedule", "country", "center", "specialty", "medic", "date"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func (c *cli) findCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <insuredId>",
		Short: "List an insured person's appointments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := c.api().find(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.asJSON {
				return c.printJSON(list)
			}
			tw := c.newTable(table.Row{"Schedule", "Country", "Center", "Specialty", "Medic", "Date", "Status"})
			for _, a := range list {
				tw.AppendRow(table.Row{a.ScheduleID, a.CountryID, a.CenterID, a.SpecialtyID, a.MedicID, a.Date, a.Estado})
			}
			tw.AppendFooter(table.Row{"", "", "", "", "", "Total", len(list)})
			tw.Render()
			return nil
		},
	}
}

func (c *cli) confirmCmd() *cobra.Command {
	var queueURL, insured, schedule string
	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Enqueue a DB_SAVE_SUCCESS event for an appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newSQS(cmd.Context())
			if err != nil {
				return err
			}
			body, err := confirmationEnvelope(insured, schedule)
			if err != nil {
				return err
			}
			out, err := client.SendMessage(cmd.Context(), &sqs.SendMessageInput{
				QueueUrl:    aws.String(queueURL),
				MessageBody: aws.String(string(body)),
			})
			if err != nil {
				return fmt.Errorf("send confirmation: %w", err)
			}
			fmt.Fprintf(c.out, "confirmation queued (message %s)\n", aws.ToString(out.MessageId))
			return nil
		},
	}
	cmd.Flags().StringVar(&queueURL, "queue-url", envOr("CONFIRMATION_QUEUE_URL", ""), "confirmation queue URL")
	cmd.Flags().StringVar(&insured, "insured", "", "insured id")
	cmd.Flags().StringVar(&schedule, "schedule", "", "schedule id")
	_ = cmd.MarkFlagRequired("insured")
	_ = cmd.MarkFlagRequired("schedule")
	return cmd
}

// confirmationEnvelope builds the event bus envelope the scheduler's
// confirmation consumer expects.
func confirmationEnvelope(insured, schedule string) ([]byte, error) {
	if _, err := strconv.ParseInt(schedule, 10, 64); err != nil {
		return nil, fmt.Errorf("schedule must be numeric: %q", schedule)
	}
	detail, err := json.Marshal(types.SavedDetail{
		InsuredID:  types.FlexString(insured),
		ScheduleID: types.FlexString(schedule),
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(types.EventEnvelope{
		Source:     types.EventSourceProcessor,
		DetailType: types.DetailTypeSaved,
		Detail:     detail,
	})
}

func (c *cli) recordsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "records <insuredId>",
		Short: "List processing records stored by the processors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeFn, err := c.newRecords(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			records, err := repo.ListByInsuredID(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if c.asJSON {
				return c.printJSON(records)
			}
			tw := c.newTable(table.Row{"ID", "Message", "Schedule", "Country", "Queue", "Status", "Sent"})
			for _, r := range records {
				tw.AppendRow(table.Row{r.ID, r.MessageID, r.ScheduleID, r.CountryID, r.QueueSource, r.Status, r.SentAt.Format(time.RFC3339)})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of records")
	return cmd
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the appointment_details table",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeFn, err := c.newRecords(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			if err := repo.EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "schema applied")
			return nil
		},
	}
}
