package collect

import (
	"context"
	"fmt"
	"strings"

	"adharvest/analyze"
	"adharvest/connect"
	"adharvest/graph"
	"adharvest/log"
	"adharvest/queries"

	"github.com/go-ldap/ldap/v3"
)

// Corpus holds every built entity collection plus the pipeline that
// resolves links across them.
type Corpus struct {
	Pipeline *graph.Pipeline
}

// search runs a registered named query end to end, returning the raw
// entries. Missing query names are a programmer error, not a runtime one,
// so they panic rather than returning an error collect's caller would have
// to handle for every single call site.
func search(ctx context.Context, client connect.Client, name string) ([]*ldap.Entry, error) {
	q, ok := queries.Get(name)
	if !ok {
		panic(fmt.Sprintf("collect: unregistered query %q", name))
	}
	entries, err := client.Search(ctx, q.Filter, q.Attributes)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", name, err)
	}
	return entries, nil
}

// Collect runs every query the pipeline needs, builds the entity
// collections, wires up the DN/SID/FQDN indexes, and runs the full
// link-resolution pipeline over the result.
func Collect(ctx context.Context, client connect.Client, progress graph.ProgressFunc) (*Corpus, error) {
	userEntries, err := search(ctx, client, "users")
	if err != nil {
		return nil, err
	}
	computerEntries, err := search(ctx, client, "computers")
	if err != nil {
		return nil, err
	}
	groupEntries, err := search(ctx, client, "groups")
	if err != nil {
		return nil, err
	}
	ouEntries, err := search(ctx, client, "ou")
	if err != nil {
		return nil, err
	}
	domainEntries, err := search(ctx, client, "domain")
	if err != nil {
		return nil, err
	}
	containerEntries, err := search(ctx, client, "container")
	if err != nil {
		return nil, err
	}
	gpoEntries, err := search(ctx, client, "gpo")
	if err != nil {
		return nil, err
	}
	trustEntries, err := search(ctx, client, "trustDomain")
	if err != nil {
		return nil, err
	}

	log.Infow("collected raw entries",
		"users", len(userEntries), "computers", len(computerEntries),
		"groups", len(groupEntries), "ous", len(ouEntries),
		"domains", len(domainEntries), "containers", len(containerEntries),
		"gpos", len(gpoEntries), "trusts", len(trustEntries))

	dnToSID := make(map[string]string)
	sidToType := make(map[string]string)
	fqdnToSID := make(map[string]string)

	users := make([]*graph.User, 0, len(userEntries))
	for _, e := range userEntries {
		u := BuildUser(e)
		users = append(users, u)
		dnToSID[strings.ToUpper(e.DN)] = u.ObjectIdentifier
		sidToType[u.ObjectIdentifier] = "User"
	}

	computers := make([]*graph.Computer, 0, len(computerEntries))
	for _, e := range computerEntries {
		c := BuildComputer(e)
		computers = append(computers, c)
		dnToSID[strings.ToUpper(e.DN)] = c.ObjectIdentifier
		sidToType[c.ObjectIdentifier] = "Computer"
		if host := e.GetAttributeValue(analyze.AttrDNSHostName); host != "" {
			fqdnToSID[strings.ToUpper(host)] = c.ObjectIdentifier
		}
	}

	groups := make([]*graph.Group, 0, len(groupEntries))
	for _, e := range groupEntries {
		g := BuildGroup(e)
		groups = append(groups, g)
		dnToSID[strings.ToUpper(e.DN)] = g.ObjectIdentifier
		sidToType[g.ObjectIdentifier] = "Group"
	}

	ous := make([]*graph.OU, 0, len(ouEntries))
	for _, e := range ouEntries {
		ou := BuildOU(e)
		ous = append(ous, ou)
		dnToSID[strings.ToUpper(e.DN)] = ou.ObjectIdentifier
		sidToType[ou.ObjectIdentifier] = "OU"
	}

	domains := make([]*graph.Domain, 0, len(domainEntries))
	for _, e := range domainEntries {
		d := BuildDomain(e)
		domains = append(domains, d)
		dnToSID[strings.ToUpper(e.DN)] = d.ObjectIdentifier
		sidToType[d.ObjectIdentifier] = "Domain"
	}

	containers := make([]*graph.Container, 0, len(containerEntries))
	for _, e := range containerEntries {
		c := BuildContainer(e)
		containers = append(containers, c)
		dnToSID[strings.ToUpper(e.DN)] = c.ObjectIdentifier
		sidToType[c.ObjectIdentifier] = "Container"
	}

	gpos := make([]*graph.GPO, 0, len(gpoEntries))
	for _, e := range gpoEntries {
		g := BuildGPO(e)
		gpos = append(gpos, g)
		dnToSID[strings.ToUpper(e.DN)] = g.ObjectIdentifier
		sidToType[g.ObjectIdentifier] = "GPO"
	}

	trusts := make([]*graph.Trust, 0, len(trustEntries))
	for _, e := range trustEntries {
		trusts = append(trusts, BuildTrust(e))
	}

	indexes := graph.NewIndexes(dnToSID, sidToType, fqdnToSID)

	pipeline, err := graph.NewPipeline(indexes)
	if err != nil {
		return nil, fmt.Errorf("constructing pipeline: %w", err)
	}
	pipeline.Users = users
	pipeline.Computers = computers
	pipeline.Groups = groups
	pipeline.OUs = ous
	pipeline.Domains = domains
	pipeline.Containers = containers
	pipeline.GPOs = gpos
	pipeline.Trusts = trusts
	pipeline.Progress = progress

	if err := pipeline.Run(); err != nil {
		return nil, fmt.Errorf("running link-resolution pipeline: %w", err)
	}

	return &Corpus{Pipeline: pipeline}, nil
}
