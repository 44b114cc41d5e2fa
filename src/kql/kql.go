// Package kql provides KQL (Kusto Query Language) query generation from a
// Dionysos scan's findings.
//
// This package enables the generation of KQL queries suitable for
// Microsoft Sentinel, Azure Log Analytics, Microsoft 365 Defender, and
// other platforms that support Kusto Query Language. The generated
// queries pivot off the hash and filename indicators a scan turned up,
// for threat hunting, security analysis, and incident response
// workflows downstream of the scan itself.
//
// # KQL Query Types
//
// The package supports generating different types of KQL queries:
//   - Hash-based queries: search for specific file hashes in security logs
//   - Filename-based queries: search for specific filenames in security logs
//   - Combined queries: search for both hashes and filenames with logical operators
//   - Multi-table queries: generate queries that search across multiple log tables
//
// # Supported Log Sources
//
// The generated KQL queries are designed to work with common security log sources:
//   - DeviceFileEvents (Microsoft 365 Defender)
//   - SecurityEvents (Azure Security Center)
//   - CommonSecurityLog (Azure Sentinel)
package kql

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/melatonein5/dionysos/src/finding"
)

// Query represents a generated KQL query with metadata.
type Query struct {
	Name        string
	Description string
	Author      string
	Generated   time.Time
	Tags        []string

	Tables     []string
	HashTypes  []string
	TimeRange  string
	MaxResults int

	HashList     []string
	FilenameList []string
	QueryBody    string
	Comments     []string
}

// Options configures KQL query generation.
type Options struct {
	Tables    []string
	HashTypes []string
	TimeRange string

	MaxResults       int
	IncludeHashes    bool
	IncludeFilenames bool
	CaseSensitive    bool

	IncludeMetadata bool
	IncludeComments bool
}

// DefaultOptions returns default options for KQL query generation.
func DefaultOptions() Options {
	return Options{
		Tables:           []string{"DeviceFileEvents"},
		TimeRange:        "7d",
		MaxResults:       1000,
		IncludeHashes:    true,
		IncludeFilenames: true,
		CaseSensitive:    false,
		IncludeMetadata:  true,
		IncludeComments:  true,
	}
}

// GenerateQuery creates a KQL query from a scan's findings, pivoting off
// HashMatch and FilenameMatch findings (Yara and Levenshtein findings
// carry no fixed indicator worth hunting for across a fleet, so they are
// not folded into the query).
func GenerateQuery(findings []finding.Finding, queryName string, hashTypes []string) (*Query, error) {
	return GenerateQueryWithOptions(findings, queryName, hashTypes, DefaultOptions())
}

// GenerateQueryWithOptions creates a KQL query with custom options.
func GenerateQueryWithOptions(findings []finding.Finding, queryName string, hashTypes []string, options Options) (*Query, error) {
	if len(findings) == 0 {
		return nil, fmt.Errorf("no findings provided for kql query generation")
	}

	if queryName == "" {
		queryName = "dionysos_generated_query"
	}
	queryName = sanitizeName(queryName)

	hashMap := make(map[string][]string)
	var filenames []string

	for _, f := range findings {
		switch f.Kind {
		case finding.KindFilename:
			if options.IncludeFilenames {
				filenames = append(filenames, f.Pattern)
			}
		case finding.KindHash:
			if !options.IncludeHashes {
				continue
			}
			hashType := strings.ToLower(f.HashKind.String())
			if len(hashTypes) > 0 && !contains(hashTypes, hashType) {
				continue
			}
			if len(options.HashTypes) > 0 && !contains(options.HashTypes, hashType) {
				continue
			}
			hashMap[hashType] = append(hashMap[hashType], fmt.Sprintf("%x", f.HashDigest))
		}
	}

	filenames = removeDuplicatesAndSort(filenames)
	for hashType := range hashMap {
		hashMap[hashType] = removeDuplicatesAndSort(hashMap[hashType])
	}

	if len(filenames) == 0 && len(hashMap) == 0 {
		return nil, fmt.Errorf("no hash or filename findings to build a kql query from")
	}

	query := &Query{
		Name:         queryName,
		Description:  fmt.Sprintf("KQL query to detect files based on hashes and filenames found by a scan of %d findings", len(findings)),
		Author:       "dionysos",
		Generated:    time.Now(),
		Tags:         []string{"threat-hunting", "file-detection", "security", "dionysos"},
		Tables:       options.Tables,
		HashTypes:    getHashTypesFromMap(hashMap),
		TimeRange:    options.TimeRange,
		MaxResults:   options.MaxResults,
		FilenameList: filenames,
	}

	var allHashes []string
	for _, hashes := range hashMap {
		allHashes = append(allHashes, hashes...)
	}
	query.HashList = allHashes

	queryBody, err := buildQueryBody(hashMap, filenames, options)
	if err != nil {
		return nil, fmt.Errorf("unable to build kql query body: %w", err)
	}
	query.QueryBody = queryBody
	query.Comments = generateComments(query, options)

	return query, nil
}

// GenerateQueryHashOnly creates a KQL query using only hash values, for
// scenarios where filenames may change but hash values remain constant.
func GenerateQueryHashOnly(findings []finding.Finding, queryName string, hashTypes []string) (*Query, error) {
	options := DefaultOptions()
	options.IncludeFilenames = false
	options.IncludeHashes = true
	options.HashTypes = hashTypes

	return GenerateQueryWithOptions(findings, queryName, hashTypes, options)
}

// ToKQLFormat returns the complete KQL query as a formatted string ready
// for execution in a KQL-enabled platform.
func (q *Query) ToKQLFormat() string {
	var parts []string

	if len(q.Comments) > 0 {
		parts = append(parts, strings.Join(q.Comments, "\n"))
		parts = append(parts, "")
	}
	parts = append(parts, q.QueryBody)

	return strings.Join(parts, "\n")
}

func buildQueryBody(hashMap map[string][]string, filenames []string, options Options) (string, error) {
	var queryParts []string
	var unionParts []string

	for _, table := range options.Tables {
		tableParts := []string{table}

		if options.TimeRange != "" {
			tableParts = append(tableParts, fmt.Sprintf("| where TimeGenerated >= ago(%s)", options.TimeRange))
		}

		var conditions []string

		if options.IncludeHashes && len(hashMap) > 0 {
			var hashConditions []string
			for hashType, hashes := range hashMap {
				if len(hashes) == 0 {
					continue
				}
				hashField := getHashFieldName(hashType, table)
				hashList := strings.Join(quoteStrings(hashes), ", ")
				hashConditions = append(hashConditions, fmt.Sprintf("(%s in (%s))", hashField, hashList))
			}
			sort.Strings(hashConditions)
			if len(hashConditions) > 0 {
				conditions = append(conditions, fmt.Sprintf("(%s)", strings.Join(hashConditions, " or ")))
			}
		}

		if options.IncludeFilenames && len(filenames) > 0 {
			filenameField := getFilenameFieldName(table)
			filenameList := strings.Join(quoteStrings(filenames), ", ")
			if options.CaseSensitive {
				conditions = append(conditions, fmt.Sprintf("(%s in (%s))", filenameField, filenameList))
			} else {
				conditions = append(conditions, fmt.Sprintf("(%s in~ (%s))", filenameField, filenameList))
			}
		}

		if len(conditions) > 0 {
			tableParts = append(tableParts, fmt.Sprintf("| where %s", strings.Join(conditions, " or ")))
		}

		tableParts = append(tableParts, fmt.Sprintf("| project TimeGenerated, %s", getProjectFields(table)))
		tableParts = append(tableParts, fmt.Sprintf("| extend SourceTable = \"%s\"", table))

		unionParts = append(unionParts, strings.Join(tableParts, "\n"))
	}

	if len(unionParts) == 0 {
		return "", fmt.Errorf("no target tables configured")
	}

	if len(unionParts) > 1 {
		queryParts = append(queryParts, fmt.Sprintf("union (\n%s\n)", strings.Join(unionParts, "\n),\n(")))
	} else {
		queryParts = append(queryParts, unionParts[0])
	}

	queryParts = append(queryParts, "| sort by TimeGenerated desc")
	if options.MaxResults > 0 {
		queryParts = append(queryParts, fmt.Sprintf("| take %d", options.MaxResults))
	}

	return strings.Join(queryParts, "\n"), nil
}

func generateComments(query *Query, options Options) []string {
	var comments []string
	if !options.IncludeMetadata {
		return comments
	}

	comments = append(comments, fmt.Sprintf("// KQL Query: %s", query.Name))
	comments = append(comments, fmt.Sprintf("// Description: %s", query.Description))
	comments = append(comments, fmt.Sprintf("// Author: %s", query.Author))
	comments = append(comments, fmt.Sprintf("// Generated: %s", query.Generated.UTC().Format("2006-01-02 15:04:05 UTC")))
	comments = append(comments, fmt.Sprintf("// Tags: %s", strings.Join(query.Tags, ", ")))
	comments = append(comments, "//")

	if len(query.HashList) > 0 {
		comments = append(comments, fmt.Sprintf("// Hash Count: %d", len(query.HashList)))
		comments = append(comments, fmt.Sprintf("// Hash Types: %s", strings.Join(query.HashTypes, ", ")))
	}
	if len(query.FilenameList) > 0 {
		comments = append(comments, fmt.Sprintf("// Filename Count: %d", len(query.FilenameList)))
	}

	comments = append(comments, fmt.Sprintf("// Tables: %s", strings.Join(query.Tables, ", ")))
	comments = append(comments, fmt.Sprintf("// Time Range: %s", query.TimeRange))
	comments = append(comments, fmt.Sprintf("// Max Results: %d", query.MaxResults))

	if options.IncludeComments {
		comments = append(comments, "//")
		comments = append(comments, "// This query searches for files based on indicators a dionysos scan found.")
		comments = append(comments, "// Modify the time range and result limits as needed for your environment.")
	}

	return comments
}

func sanitizeName(name string) string {
	result := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, name)

	if len(result) > 0 && result[0] >= '0' && result[0] <= '9' {
		result = "_" + result
	}
	return result
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func removeDuplicatesAndSort(slice []string) []string {
	keys := make(map[string]bool)
	var result []string
	for _, item := range slice {
		if !keys[item] {
			keys[item] = true
			result = append(result, item)
		}
	}
	sort.Strings(result)
	return result
}

func getHashTypesFromMap(hashMap map[string][]string) []string {
	var hashTypes []string
	for hashType := range hashMap {
		hashTypes = append(hashTypes, hashType)
	}
	sort.Strings(hashTypes)
	return hashTypes
}

func quoteStrings(values []string) []string {
	var quoted []string
	for _, s := range values {
		quoted = append(quoted, fmt.Sprintf(`"%s"`, s))
	}
	return quoted
}

func getHashFieldName(hashType, table string) string {
	switch table {
	case "DeviceFileEvents":
		switch hashType {
		case "md5":
			return "MD5"
		case "sha1":
			return "SHA1"
		case "sha256":
			return "SHA256"
		default:
			return "SHA256"
		}
	case "SecurityEvents":
		return "FileHash"
	case "CommonSecurityLog":
		return "FileHash"
	default:
		return fmt.Sprintf("%sHash", strings.ToUpper(hashType))
	}
}

func getFilenameFieldName(table string) string {
	switch table {
	case "DeviceFileEvents", "SecurityEvents", "CommonSecurityLog":
		return "FileName"
	default:
		return "FileName"
	}
}

func getProjectFields(table string) string {
	switch table {
	case "DeviceFileEvents":
		return "DeviceName, FileName, FolderPath, MD5, SHA1, SHA256, ProcessCommandLine, InitiatingProcessFileName"
	case "SecurityEvents":
		return "Computer, FileName, FilePath, FileHash, ProcessName, CommandLine"
	case "CommonSecurityLog":
		return "Computer, FileName, FilePath, FileHash, ProcessName, CommandLine"
	default:
		return "Computer, FileName, FilePath, FileHash"
	}
}
