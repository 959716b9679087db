package ripestat

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ASN is an autonomous system number. RIPE Stat returns it either as a JSON
// number or as a string with or without the AS prefix.
type ASN int

// Int returns the ASN as a plain integer
func (a ASN) Int() int {
	return int(a)
}

func (a ASN) String() string {
	return "AS" + strconv.Itoa(int(a))
}

func (a *ASN) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if raw == "" || raw == "null" {
		*a = 0
		return nil
	}

	n, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(raw), "AS"))
	if err != nil {
		return fmt.Errorf(ErrBadASN, data)
	}
	*a = ASN(n)
	return nil
}

// response is the envelope shared by every data call
type response[T any] struct {
	Status string `json:"status"`
	Cached bool   `json:"cached"`
	Data   T      `json:"data"`
}

func (r *response[T]) status() string {
	return r.Status
}

// NetworkInfo is the data of the network-info call
type NetworkInfo struct {
	Prefix string `json:"prefix"`
	ASNs   []ASN  `json:"asns"`
}

// ASOverview is the data of the as-overview call
type ASOverview struct {
	Holder    string `json:"holder"`
	Resource  string `json:"resource"`
	Announced bool   `json:"announced"`
}

// Location is the first location of the maxmind-geo-lite call
type Location struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

type geoLite struct {
	LocatedResources []struct {
		Locations []Location `json:"locations"`
	} `json:"located_resources"`
}
