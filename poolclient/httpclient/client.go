// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package httpclient provides an HTTP client to interact with a stakepool node.
// It offers methods to read the pool, its holders, certificates and validators, and to submit
// every pool operation the API exposes.
package httpclient

import (
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/api/accounts"
	"github.com/vechain/stakepool/api/certificates"
	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/api/governance"
	"github.com/vechain/stakepool/api/network"
	"github.com/vechain/stakepool/api/node"
	"github.com/vechain/stakepool/api/pool"
	"github.com/vechain/stakepool/api/validators"
	"github.com/vechain/stakepool/base"
	stakepool "github.com/vechain/stakepool/pool"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNot200Status = errors.New("not 200 status code")
)

// Client represents the HTTP client for interacting with a stakepool node.
type Client struct {
	url  string
	c    *http.Client
	info atomic.Pointer[node.Status]
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: url,
		c:   c,
	}
}

func amount(v *big.Int) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(v)
}

// GetNodeInfo retrieves the node description. The deployment addresses never change, so the
// first answer is kept for Addresses.
func (c *Client) GetNodeInfo() (*node.Status, error) {
	status, err := get[node.Status](c, c.url+"/node/info", "node info")
	if err != nil {
		return nil, err
	}
	c.info.Store(status)
	return status, nil
}

// PoolAddress returns the pool address, asking the node once.
func (c *Client) PoolAddress() (base.Address, error) {
	if info := c.info.Load(); info != nil {
		return info.PoolAddress, nil
	}
	info, err := c.GetNodeInfo()
	if err != nil {
		return base.Address{}, err
	}
	return info.PoolAddress, nil
}

// GetPool retrieves the pool summary.
func (c *Client) GetPool() (*pool.Summary, error) {
	return get[pool.Summary](c, c.url+"/pool", "pool summary")
}

// ConvertToShares returns the shares value would buy now.
func (c *Client) ConvertToShares(value *big.Int) (*pool.Conversion, error) {
	return get[pool.Conversion](c, c.url+"/pool/convert?value="+value.String(), "conversion")
}

// ConvertToValue returns the value shares redeem now.
func (c *Client) ConvertToValue(shares *big.Int) (*pool.Conversion, error) {
	return get[pool.Conversion](c, c.url+"/pool/convert?shares="+shares.String(), "conversion")
}

// GetWithdrawals retrieves the requests the pool queued for itself.
func (c *Client) GetWithdrawals() ([]*pool.Request, error) {
	res, err := get[[]*pool.Request](c, c.url+"/pool/withdrawals", "pool withdrawals")
	if err != nil {
		return nil, err
	}
	return *res, nil
}

// Delegate moves the delegatable buffer to validators.
func (c *Client) Delegate() (*pool.AmountResult, error) {
	return post[pool.AmountResult](c, c.url+"/pool/delegate", struct{}{}, "delegate")
}

// DistributeRewards claims validator rewards into the pool.
func (c *Client) DistributeRewards() (*pool.AmountResult, error) {
	return post[pool.AmountResult](c, c.url+"/pool/rewards/distribute", struct{}{}, "distribute rewards")
}

// Rebalance moves stake from over weighted validators.
func (c *Client) Rebalance(caller base.Address) (*pool.RebalanceResult, error) {
	return post[pool.RebalanceResult](c, c.url+"/pool/rebalance", &pool.CallerBody{Caller: caller}, "rebalance")
}

// ClaimToPool settles the pool withdrawal at index.
func (c *Client) ClaimToPool(index uint64) (*pool.AmountResult, error) {
	return post[pool.AmountResult](c, c.url+"/pool/withdrawals/"+strconv.FormatUint(index, 10)+"/claim", struct{}{}, "claim to pool")
}

// GetAccount retrieves what the pool knows about addr.
func (c *Client) GetAccount(addr base.Address) (*accounts.Account, error) {
	return get[accounts.Account](c, c.url+"/accounts/"+addr.String(), "account")
}

// Submit stakes value from addr.
func (c *Client) Submit(addr base.Address, value *big.Int, referral base.Address) (*accounts.SubmitResult, error) {
	return post[accounts.SubmitResult](c, c.url+"/accounts/"+addr.String()+"/submit",
		&accounts.SubmitBody{Amount: amount(value), Referral: referral}, "submit")
}

// RequestWithdraw burns shares of addr against a withdrawal certificate.
func (c *Client) RequestWithdraw(addr base.Address, shares *big.Int, referral base.Address) (*accounts.WithdrawResult, error) {
	return post[accounts.WithdrawResult](c, c.url+"/accounts/"+addr.String()+"/withdraw",
		&accounts.WithdrawBody{Shares: amount(shares), Referral: referral}, "request withdraw")
}

// GetCertificate retrieves a withdrawal certificate.
func (c *Client) GetCertificate(id uint64) (*certificates.Certificate, error) {
	return get[certificates.Certificate](c, c.url+"/certificates/"+strconv.FormatUint(id, 10), "certificate")
}

// Claim pays out a claimable certificate to its owner.
func (c *Client) Claim(caller base.Address, id uint64) (*certificates.ClaimResult, error) {
	return post[certificates.ClaimResult](c, c.url+"/certificates/"+strconv.FormatUint(id, 10)+"/claim",
		&certificates.ClaimBody{Caller: caller}, "claim")
}

// GetValidators retrieves every validator the pool tracks.
func (c *Client) GetValidators() ([]*validators.Validator, error) {
	res, err := get[[]*validators.Validator](c, c.url+"/validators", "validators")
	if err != nil {
		return nil, err
	}
	return *res, nil
}

// GetValidator retrieves one validator.
func (c *Client) GetValidator(id base.Address) (*validators.Validator, error) {
	return get[validators.Validator](c, c.url+"/validators/"+id.String(), "validator")
}

// SyncValidators mirrors the directory into the pool.
func (c *Client) SyncValidators() (*stakepool.SyncResult, error) {
	return post[stakepool.SyncResult](c, c.url+"/validators/sync", struct{}{}, "sync validators")
}

// GetGovernance retrieves the pool settings.
func (c *Client) GetGovernance() (*governance.Settings, error) {
	return get[governance.Settings](c, c.url+"/governance", "governance settings")
}

// SetParam changes a pool parameter.
func (c *Client) SetParam(caller base.Address, name string, value *big.Int) (*governance.Settings, error) {
	return post[governance.Settings](c, c.url+"/governance/params",
		&governance.ParamBody{Caller: caller, Name: name, Value: amount(value)}, "set param")
}

// SetFeeSplit changes how the protocol fee is shared.
func (c *Client) SetFeeSplit(caller base.Address, insuranceBps, daoBps uint64) (*governance.Settings, error) {
	return post[governance.Settings](c, c.url+"/governance/fee-split",
		&governance.FeeSplitBody{Caller: caller, InsuranceBps: insuranceBps, DaoBps: daoBps}, "set fee split")
}

// Pause stops holder operations.
func (c *Client) Pause(caller base.Address) (*governance.Settings, error) {
	return post[governance.Settings](c, c.url+"/governance/pause", &governance.CallerBody{Caller: caller}, "pause")
}

// Unpause resumes holder operations.
func (c *Client) Unpause(caller base.Address) (*governance.Settings, error) {
	return post[governance.Settings](c, c.url+"/governance/unpause", &governance.CallerBody{Caller: caller}, "unpause")
}

// GrantRole grants or revokes role for account.
func (c *Client) GrantRole(caller base.Address, role string, account base.Address, grant bool) (*governance.Settings, error) {
	return post[governance.Settings](c, c.url+"/governance/roles/"+url.PathEscape(role),
		&governance.RoleBody{Caller: caller, Account: account, Grant: grant}, "grant role")
}

// SetDelegation enables or disables new delegations to a validator.
func (c *Client) SetDelegation(caller, id base.Address, enabled bool) (*governance.Settings, error) {
	return post[governance.Settings](c, c.url+"/governance/validators/"+id.String()+"/delegation",
		&governance.DelegationBody{Caller: caller, Enabled: enabled}, "set delegation")
}

// FilterEvents filters pool events based on the provided event filter.
func (c *Client) FilterEvents(req *events.EventFilter) ([]*events.FilteredEvent, error) {
	res, err := post[[]*events.FilteredEvent](c, c.url+"/logs/event", req, "filter events")
	if err != nil {
		return nil, err
	}
	return *res, nil
}

// GetNetwork retrieves the simulated network, solo nodes only.
func (c *Client) GetNetwork() (*network.Network, error) {
	return get[network.Network](c, c.url+"/network", "network")
}

// Advance moves the simulated network forward without rewards.
func (c *Client) Advance(epochs uint64) (*network.Network, error) {
	return post[network.Network](c, c.url+"/network/advance", &network.AdvanceBody{Epochs: epochs}, "advance")
}

// Tick runs one epoch of the simulated network.
func (c *Client) Tick(rewardBps uint64) (*network.Network, error) {
	return post[network.Network](c, c.url+"/network/tick", &network.TickBody{RewardBps: rewardBps}, "tick")
}

// RawHTTPPost sends a raw HTTP POST request to the specified path with the provided data.
func (c *Client) RawHTTPPost(path string, calldata any) ([]byte, error) {
	return c.httpPOST(c.url+path, calldata)
}

// RawHTTPGet sends a raw HTTP GET request to the specified path.
func (c *Client) RawHTTPGet(path string) ([]byte, error) {
	return c.httpGET(c.url + path)
}

func (c *Client) String() string {
	return fmt.Sprintf("httpclient(%s)", c.url)
}
