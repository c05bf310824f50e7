package server

import (
	"net"
	"strconv"
)

// Key identifies an instance by the address it was asked to bind.
// An empty Host binds all interfaces.
type Key struct {
	Host string
	Port int
}

// Address returns the listen address for the key.
func (k Key) Address() string {
	return net.JoinHostPort(k.Host, strconv.Itoa(k.Port))
}

// URL returns the browser URL for the key. An empty host maps to localhost.
func (k Key) URL() string {
	return urlFor(k.Host, k.Port)
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return k.Address()
}

func urlFor(host string, port int) string {
	if host == "" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}
