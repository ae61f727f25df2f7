// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wsclient

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vechain/stakepool/api/subscriptions"
	"github.com/vechain/stakepool/base"
)

var ErrUnexpectedMsg = errors.New("unexpected message format")

type Client struct {
	host   string
	scheme string
}

func NewClient(url string) (*Client, error) {
	var host string
	var scheme string

	if strings.Contains(url, "https://") || strings.Contains(url, "wss://") {
		host = strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "wss://")
		scheme = "wss"
	} else if strings.Contains(url, "http://") || strings.Contains(url, "ws://") {
		host = strings.TrimPrefix(strings.TrimPrefix(url, "http://"), "ws://")
		scheme = "ws"
	} else {
		return nil, fmt.Errorf("invalid url")
	}

	return &Client{
		host:   strings.TrimSuffix(host, "/"),
		scheme: scheme,
	}, nil
}

// EventQuery selects the pushed events. Zero fields match everything.
type EventQuery struct {
	Kind      string
	Account   *base.Address
	Validator *base.Address
	TokenID   *uint64
}

func (q *EventQuery) encode() string {
	if q == nil {
		return ""
	}
	values := url.Values{}
	if q.Kind != "" {
		values.Set("kind", q.Kind)
	}
	if q.Account != nil {
		values.Set("account", q.Account.String())
	}
	if q.Validator != nil {
		values.Set("validator", q.Validator.String())
	}
	if q.TokenID != nil {
		values.Set("tokenId", strconv.FormatUint(*q.TokenID, 10))
	}
	return values.Encode()
}

// SubscribeEvents streams the pool events matching query as they are committed.
func (c *Client) SubscribeEvents(query *EventQuery) (*Subscription[*subscriptions.EventMessage], error) {
	conn, err := c.connect("/subscriptions/event", query.encode())
	if err != nil {
		return nil, fmt.Errorf("unable to connect - %w", err)
	}

	return subscribe[subscriptions.EventMessage](conn), nil
}

// subscribe pumps the JSON messages of conn into the subscription channel until the connection
// fails or Unsubscribe is called.
func subscribe[T any](conn *websocket.Conn) *Subscription[*T] {
	eventChan := make(chan EventWrapper[*T])
	done := make(chan struct{})

	go func() {
		defer close(eventChan)
		defer conn.Close()

		for {
			var data T
			if err := conn.ReadJSON(&data); err != nil {
				select {
				case <-done:
				case eventChan <- EventWrapper[*T]{Error: fmt.Errorf("%w: %w", ErrUnexpectedMsg, err)}:
				}
				return
			}

			select {
			case <-done:
				return
			case eventChan <- EventWrapper[*T]{Data: &data}:
			}
		}
	}()

	var once sync.Once
	return &Subscription[*T]{
		EventChan: eventChan,
		Unsubscribe: func() error {
			var err error
			once.Do(func() {
				close(done)
				err = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				conn.Close()
			})
			return err
		},
	}
}

func (c *Client) connect(endpoint, rawQuery string) (*websocket.Conn, error) {
	u := url.URL{
		Scheme:   c.scheme,
		Host:     c.host,
		Path:     endpoint,
		RawQuery: rawQuery,
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
