// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vechain/stakepool/pool/reverts"
)

// RevertCodeHeader carries the code of a rejected pool operation.
const RevertCodeHeader = "X-Revert-Code"

// Error is a non 200 answer of the API.
type Error struct {
	Status     int
	RevertCode reverts.Code
	Message    string
}

func (e *Error) Error() string {
	if e.RevertCode != "" {
		return fmt.Sprintf("http error - Status Code %d - revert %s - %s", e.Status, e.RevertCode, e.Message)
	}
	return fmt.Sprintf("http error - Status Code %d - %s", e.Status, e.Message)
}

// Is matches ErrNot200Status, and ErrNotFound for 404 answers.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNot200Status:
		return true
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

func (c *Client) httpRequest(method, url string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Status:     resp.StatusCode,
			RevertCode: reverts.Code(resp.Header.Get(RevertCodeHeader)),
			Message:    strings.TrimSpace(string(responseBody)),
		}
	}
	return responseBody, nil
}

func (c *Client) httpGET(url string) ([]byte, error) {
	return c.httpRequest(http.MethodGet, url, nil)
}

func (c *Client) httpPOST(url string, payload any) ([]byte, error) {
	var data []byte
	var err error

	if raw, ok := payload.([]byte); ok {
		data = raw
	} else {
		data, err = json.Marshal(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to marshal payload - %w", err)
	}

	return c.httpRequest(http.MethodPost, url, bytes.NewBuffer(data))
}

func get[T any](c *Client, url, what string) (*T, error) {
	body, err := c.httpGET(url)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve %s - %w", what, err)
	}
	var res T
	if err = json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("unable to unmarshal %s - %w", what, err)
	}
	return &res, nil
}

func post[T any](c *Client, url string, payload any, what string) (*T, error) {
	body, err := c.httpPOST(url, payload)
	if err != nil {
		return nil, fmt.Errorf("unable to %s - %w", what, err)
	}
	var res T
	if err = json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("unable to unmarshal %s result - %w", what, err)
	}
	return &res, nil
}
