package discovery

import (
	"strings"

	"golang.org/x/net/dns/dnsmessage"

	"github.com/rescp17/dnssdbridge/pkg/engine"
)

// MaxDomainName is the longest escaped full name the engine accepts,
// including the trailing dot and NUL of the native representation.
const MaxDomainName = 1009

// ConstructFullName builds the escaped full name
// "<service>.<type>.<domain>." from its parts. The service instance
// name may contain any bytes; dots, backslashes and non-printable
// characters are escaped. An empty service name yields
// "<type>.<domain>.". Type and domain must be non-empty and are taken
// as already escaped.
func ConstructFullName(service, regType, domain string) (string, error) {
	if regType == "" {
		return "", configErrf("construct-full-name", "type must not be empty")
	}
	if domain == "" {
		return "", configErrf("construct-full-name", "domain must not be empty")
	}

	var b strings.Builder
	if service != "" {
		escapeLabel(&b, service)
		b.WriteByte('.')
	}
	b.WriteString(regType)
	if !strings.HasSuffix(regType, ".") {
		b.WriteByte('.')
	}
	b.WriteString(domain)
	if !strings.HasSuffix(domain, ".") {
		b.WriteByte('.')
	}

	full := b.String()
	if len(full) >= MaxDomainName {
		return "", configErrf("construct-full-name", "full name exceeds %d bytes", MaxDomainName-1)
	}
	return full, nil
}

// escapeLabel writes one DNS label with the conventional presentation
// escaping: '.' and '\' get a backslash, other bytes outside printable
// ASCII become \DDD.
func escapeLabel(b *strings.Builder, label string) {
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c == '.' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c <= ' ' || c >= 0x7f:
			b.WriteByte('\\')
			b.WriteByte('0' + c/100)
			b.WriteByte('0' + (c/10)%10)
			b.WriteByte('0' + c%10)
		default:
			b.WriteByte(c)
		}
	}
}

// Reconfirm tells the engine a cached record is suspected stale and
// should be reverified on the network. Fire and forget; an error only
// reports a malformed request.
func (c *Client) Reconfirm(iface Interface, fullName string, rrType dnsmessage.Type, rrClass dnsmessage.Class, rdata []byte) error {
	if fullName == "" {
		return configErrf("reconfirm", "full name must not be empty")
	}
	if len(rdata) == 0 {
		return configErrf("reconfirm", "rdata must not be empty")
	}
	c.init()
	return c.eng.ReconfirmRecord(engine.Flags(0), iface.Raw(), fullName, uint16(rrType), uint16(rrClass), rdata)
}
