/*
Package dns resolves gateway hostnames to the address the dashboard should
use to reach them.

Resolution order:

 1. an IP literal is returned unchanged
 2. the static host table from the config file
 3. an A query to each configured DNS server, via github.com/miekg/dns
 4. the system resolver, preferring IPv4

A hostname nothing can resolve is returned as is, with a warning, so the
dashboard still gets a usable (if less robust) URL.
*/
package dns
