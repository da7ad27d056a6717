// Package freeze turns a dynamic web server into a static site snapshot.
// It crawls the server from a set of seed routes, discovers further pages
// by extracting links from HTML, and writes every fetched resource to a
// local file tree.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, http/).
package freeze
