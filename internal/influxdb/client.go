package influxdb

import (
	"context"
	"fmt"
	"strconv"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"watts-backend/internal/models"
)

const readingMeasurement = "meter_reading"

// Client mirrors recorded readings into an InfluxDB v2 bucket.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

// NewClient connects and verifies the server responds to a health check.
func NewClient(ctx context.Context, url, token, org, bucket string) (*Client, error) {
	client := influxdb2.NewClient(url, token)

	if _, err := client.Health(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}

	return &Client{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
	}, nil
}

// WriteReading stores one reading as a point timestamped at the reading date.
func (c *Client) WriteReading(ctx context.Context, r *models.Reading) error {
	return c.writeAPI.WritePoint(ctx, ReadingPoint(r))
}

func ReadingPoint(r *models.Reading) *write.Point {
	tags := map[string]string{
		"meter_id":         strconv.Itoa(r.MeterID),
		"billing_cycle_id": strconv.Itoa(r.BillingCycleID),
		"estimated":        strconv.FormatBool(r.IsEstimated),
	}
	if r.Meter != nil {
		tags["meter_name"] = r.Meter.Name
		tags["meter_type"] = string(r.Meter.MeterType)
	}
	return write.NewPoint(
		readingMeasurement,
		tags,
		map[string]interface{}{
			"reading_value":                 r.ReadingValue,
			"units_consumed_since_previous": r.UnitsConsumedSincePrevious,
		},
		r.Date,
	)
}

func (c *Client) Close() {
	c.client.Close()
}
