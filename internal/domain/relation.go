package domain

import "github.com/waabox/cmdeck/internal/hal"

// Relation is a link relation the client navigates by.
type Relation uint8

const (
	RelSelf Relation = iota
	RelPrograms
	RelPipelines
	RelEnvironments
	RelExecution
	RelExecutionID
	RelMetrics
	RelCancel
	RelAdvance
	RelLogs
	RelLogsDownload
	RelLogsTail
	RelDeveloperConsole
)

const relPrefix = "http://ns.adobe.com/adobecloud/rel/"

var relationNames = [...]string{
	RelSelf:             "self",
	RelPrograms:         relPrefix + "programs",
	RelPipelines:        relPrefix + "pipelines",
	RelEnvironments:     relPrefix + "environments",
	RelExecution:        relPrefix + "execution",
	RelExecutionID:      relPrefix + "execution/id",
	RelMetrics:          relPrefix + "pipeline/metrics",
	RelCancel:           relPrefix + "pipeline/cancel",
	RelAdvance:          relPrefix + "pipeline/advance",
	RelLogs:             relPrefix + "logs",
	RelLogsDownload:     relPrefix + "logs/download",
	RelLogsTail:         relPrefix + "logs/tail",
	RelDeveloperConsole: relPrefix + "developerConsole",
}

// String returns the relation's name as it appears under _links.
func (r Relation) String() string {
	if int(r) < len(relationNames) {
		return relationNames[r]
	}
	return "unknown"
}

// Links holds the links of a resource keyed by relation.
type Links map[Relation][]hal.Link

// LinksOf extracts the given relations from doc.
func LinksOf(doc hal.Document, rels ...Relation) Links {
	links := Links{}
	for _, rel := range rels {
		if found := doc.Links(rel.String()); len(found) > 0 {
			links[rel] = found
		}
	}
	return links
}

// Link returns the first link for rel.
func (l Links) Link(rel Relation) (hal.Link, bool) {
	found := l[rel]
	if len(found) == 0 {
		return hal.Link{}, false
	}
	return found[0], true
}

// All returns every link for rel.
func (l Links) All(rel Relation) []hal.Link {
	return l[rel]
}
