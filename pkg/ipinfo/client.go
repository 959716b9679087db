package ipinfo

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/DIVD-NL/splunk-lookup-commands/pkg/types"

	"github.com/ipinfo/go/v2/ipinfo"
	"github.com/sirupsen/logrus"
)

// Error messages
const (
	errInvalidIP = "ipinfo: invalid IP address format"
	errNoInfo    = "ipinfo: no information returned"
)

// DefaultTimeout bounds a single ipinfo.io request
const DefaultTimeout = 10 * time.Second

// Client wraps the IPInfo API client
type Client struct {
	*ipinfo.Client
	IpInfoToken string
}

// NewIpInfoClient creates a new IPInfo client with the specified token.
// Lookups are single attempts; a failed lookup is final.
func NewIpInfoClient(ipInfoToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := &Client{
		IpInfoToken: ipInfoToken,
	}

	client.Client = ipinfo.NewClient(&http.Client{Timeout: timeout}, nil, client.IpInfoToken)

	return client
}

// Describe retrieves ASN, organisation and location for the given IP address
func (c *Client) Describe(ipAddr string) (*types.Peer, error) {
	parsedIP := net.ParseIP(ipAddr)
	if parsedIP == nil {
		return nil, errors.New(errInvalidIP)
	}

	info, err := c.Client.GetIPInfo(parsedIP)
	if err != nil {
		logrus.Warnf("[ipinfo] Failed to describe %s: %s", ipAddr, err)
		return nil, err
	}
	if info == nil {
		return nil, errors.New(errNoInfo)
	}

	logrus.Debugf("[ipinfo] Found info for %s: %+v", ipAddr, info)
	return peerFromCore(ipAddr, info), nil
}

func peerFromCore(ipAddr string, info *ipinfo.Core) *types.Peer {
	peer := &types.Peer{
		IP:      ipAddr,
		Org:     info.Org,
		Country: info.Country,
		City:    info.City,
	}

	// Free tier tokens carry the ASN only as the prefix of Org, e.g. "AS15169 Google LLC"
	if info.ASN != nil && info.ASN.ASN != "" {
		peer.ASN = info.ASN.ASN
		if info.ASN.Name != "" {
			peer.Org = info.ASN.Name
		}
	} else if asn, org, ok := strings.Cut(info.Org, " "); ok && strings.HasPrefix(asn, "AS") {
		peer.ASN = asn
		peer.Org = org
	}

	return peer
}
