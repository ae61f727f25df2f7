// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package poolclient combines the HTTP and websocket clients of a stakepool node.
package poolclient

import (
	"errors"
	"math/big"

	"github.com/vechain/stakepool/api/certificates"
	"github.com/vechain/stakepool/api/subscriptions"
	"github.com/vechain/stakepool/base"
	"github.com/vechain/stakepool/poolclient/httpclient"
	"github.com/vechain/stakepool/poolclient/wsclient"
)

type Client struct {
	*httpclient.Client
	wsConn *wsclient.Client
}

func New(url string) *Client {
	return &Client{
		Client: httpclient.New(url),
	}
}

func NewWithWS(url string) (*Client, error) {
	wsClient, err := wsclient.NewClient(url)
	if err != nil {
		return nil, err
	}

	return &Client{
		Client: httpclient.New(url),
		wsConn: wsClient,
	}, nil
}

// SubscribeEvents requires a client created by NewWithWS.
func (c *Client) SubscribeEvents(query *wsclient.EventQuery) (*wsclient.Subscription[*subscriptions.EventMessage], error) {
	if c.wsConn == nil {
		return nil, errors.New("not a websocket client")
	}
	return c.wsConn.SubscribeEvents(query)
}

// Redeem burns every share of addr and returns the certificate minted for them.
func (c *Client) Redeem(addr base.Address) (*certificates.Certificate, error) {
	acc, err := c.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	shares := (*big.Int)(acc.Shares)
	if shares == nil || shares.Sign() == 0 {
		return nil, errors.New("no shares to redeem")
	}
	res, err := c.RequestWithdraw(addr, shares, base.Address{})
	if err != nil {
		return nil, err
	}
	return c.GetCertificate(res.TokenID)
}
