package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "2001:db8::1", "2001:db8::1"},
		{"trailing newline", "2001:db8::1\n", "2001:db8::1"},
		{"full form", "2001:0db8:0000:0000:0000:ff00:0042:8329", "2001:0db8:0000:0000:0000:ff00:0042:8329"},
		{"upper case", "IP: 2001:DB8:ABCD::12", "2001:DB8:ABCD::12"},
		{"html", "<html><body>Current IP Address: 2001:db8:85a3::8a2e:370:7334</body></html>", "2001:db8:85a3::8a2e:370:7334"},
		{"json", `{"ip":"240e:3b4:38e4:1bd0::1","country":"CN"}`, "240e:3b4:38e4:1bd0::1"},
		{"ipv4 mapped", "addr=::ffff:192.0.2.128;", "::ffff:192.0.2.128"},
		{"zone", "link fe80::1%eth0 up", "fe80::1%eth0"},
		{"sentence", "Your IP is 2001:db8::2.", "2001:db8::2"},
		{"loopback", "[::1]", "::1"},
		{"label", "IPv6:2001:db8::1", "2001:db8::1"},
		{"interface", "eth0:2001:db8::1", "2001:db8::1"},
		{"field", "Address:2001:db8::1", "2001:db8::1"},
		{"table cell", "<td>IPv6:240e:3b4:38e4:1bd0::1</td>", "240e:3b4:38e4:1bd0::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractString(tt.text)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractNothing(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"no address", "hello world"},
		{"ipv4 only", "Current IP Address: 192.168.1.1"},
		{"truncated", "1234:5678"},
		{"bad hextet", "gggg::1"},
		{"long hextet", "12345::1"},
		{"too many groups", "1:2:3:4:5:6:7:8:9"},
		{"unspecified", "address :: here"},
		{"scope operator", "std::vector"},
		{"css pseudo element", "p::before { content: '' }"},
		{"clock", "12:30:45"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractString(tt.text)
			assert.False(t, ok, "got %q", got)
			assert.Empty(t, got)
		})
	}
}

func TestExtractFirstMatch(t *testing.T) {
	got, ok := ExtractString("primary 2001:db8::1, secondary 2001:db8::2")
	assert.True(t, ok)
	assert.Equal(t, "2001:db8::1", got)

	got, ok = ExtractString("1:2:3:4:5:6:7:8:9 then 2001:db8::2 then 2001:db8::3")
	assert.True(t, ok)
	assert.Equal(t, "2001:db8::2", got)
}

func TestExtractBinary(t *testing.T) {
	text := append([]byte{0xff, 0xfe, 0x00, ' '}, []byte("2001:db8::7 ")...)
	text = append(text, 0x80, 0x81)

	got, ok := Extract(text)
	assert.True(t, ok)
	assert.Equal(t, "2001:db8::7", got)
}

func TestExtractTruncated(t *testing.T) {
	_, ok := extract([]byte("you are 2001:db8::"), true)
	assert.False(t, ok, "an address touching the cut is incomplete")

	_, ok = extract([]byte("2001:db8::1"), true)
	assert.False(t, ok)

	ip, ok := extract([]byte("2001:db8::1 and 2001:db8::77"), true)
	require.True(t, ok)
	assert.Equal(t, "2001:db8::1", ip)

	ip, ok = extract([]byte("you are 2001:db8::"), false)
	require.True(t, ok)
	assert.Equal(t, "2001:db8::", ip)
}
