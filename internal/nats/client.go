package nats

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

const BatchSubmitSubject = "upserts.submit"

type Client struct {
	conn *nats.Conn
}

func NewClient(url string) (*Client, error) {
	if url == "" {
		url = nats.DefaultURL
	}

	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Client{conn: conn}, nil
}

func (c *Client) PublishBatch(msg *BatchMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal batch submission: %w", err)
	}

	if err := c.conn.Publish(BatchSubmitSubject, data); err != nil {
		return fmt.Errorf("failed to publish batch submission: %w", err)
	}

	return nil
}

func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
