package whois

/*
* https://www.DIVD.nl
* released under the Apache 2.0 license
* https://www.apache.org/licenses/LICENSE-2.0
 */

import (
	"github.com/DIVD-NL/splunk-lookup-commands/pkg/normalize"

	whoisparser "github.com/likexian/whois-parser"
)

// parsedPrefix is prepended to every attribute below the whois_ namespace
const parsedPrefix = "parsed_"

// Attribute maps one value of a parsed WHOIS answer to an output field
type Attribute struct {
	// Name identifies the attribute in logs
	Name string
	// Key is the output field without namespace, e.g. parsed_registrar
	Key string
	// Rule flattens the value into a string
	Rule normalize.Rule
	// Get returns the raw value, nil when absent
	Get func(*whoisparser.WhoisInfo) any
}

// Attributes is iterated once per successful lookup, in order.
// Scalar values are handed over as wire bytes so registries answering in a
// legacy encoding still produce readable fields.
var Attributes = []Attribute{
	{"registrar", parsedPrefix + "registrar", normalize.Bytes, registrar(func(c *whoisparser.Contact) string { return c.Name })},
	{"creation_date", parsedPrefix + "creation_date", normalize.Bytes, domain(func(d *whoisparser.Domain) any { return wire(d.CreatedDate) })},
	{"expiration_date", parsedPrefix + "expiration_date", normalize.Bytes, domain(func(d *whoisparser.Domain) any { return wire(d.ExpirationDate) })},
	{"updated_date", parsedPrefix + "updated_date", normalize.Bytes, domain(func(d *whoisparser.Domain) any { return wire(d.UpdatedDate) })},
	{"registrant_name", parsedPrefix + "registrant_name", normalize.Bytes, registrant(func(c *whoisparser.Contact) string { return c.Name })},
	{"registrant_organization", parsedPrefix + "registrant_organization", normalize.Bytes, registrant(func(c *whoisparser.Contact) string { return c.Organization })},
	{"registrant_email", parsedPrefix + "registrant_email", normalize.Bytes, registrant(func(c *whoisparser.Contact) string { return c.Email })},
	{"dnssec", parsedPrefix + "dnssec", normalize.Text, domain(func(d *whoisparser.Domain) any { return d.DNSSec })},
	{"city", parsedPrefix + "city", normalize.Bytes, registrant(func(c *whoisparser.Contact) string { return c.City })},
	{"state", parsedPrefix + "state", normalize.Bytes, registrant(func(c *whoisparser.Contact) string { return c.Province })},
	{"country", parsedPrefix + "country", normalize.Bytes, registrant(func(c *whoisparser.Contact) string { return c.Country })},
	{"address", parsedPrefix + "address", normalize.Bytes, registrant(func(c *whoisparser.Contact) string { return c.Street })},
	{"zipcode", parsedPrefix + "zipcode", normalize.Bytes, registrant(func(c *whoisparser.Contact) string { return c.PostalCode })},
	{"phone", parsedPrefix + "phone", normalize.Bytes, registrant(func(c *whoisparser.Contact) string { return c.Phone })},
	{"name_servers", parsedPrefix + "name_servers", normalize.Sequence, domain(func(d *whoisparser.Domain) any { return d.NameServers })},
	{"status", parsedPrefix + "domain_status", normalize.Sequence, domain(func(d *whoisparser.Domain) any { return d.Status })},
}

// wire returns s as bytes, nil when empty
func wire(s string) any {
	if s == "" {
		return nil
	}
	return []byte(s)
}

func domain(get func(*whoisparser.Domain) any) func(*whoisparser.WhoisInfo) any {
	return func(info *whoisparser.WhoisInfo) any {
		if info == nil || info.Domain == nil {
			return nil
		}
		return get(info.Domain)
	}
}

func registrar(get func(*whoisparser.Contact) string) func(*whoisparser.WhoisInfo) any {
	return func(info *whoisparser.WhoisInfo) any {
		if info == nil || info.Registrar == nil {
			return nil
		}
		return wire(get(info.Registrar))
	}
}

func registrant(get func(*whoisparser.Contact) string) func(*whoisparser.WhoisInfo) any {
	return func(info *whoisparser.WhoisInfo) any {
		if info == nil || info.Registrant == nil {
			return nil
		}
		return wire(get(info.Registrant))
	}
}
