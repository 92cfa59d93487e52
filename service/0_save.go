package service

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/fulldump/apitest"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Save writes a markdown example of the request and response when
// API_EXAMPLES_PATH is set. Used to keep the API docs in sync with the tests.
func Save(response *apitest.Response, title, description string) {

	examplesPath := os.Getenv("API_EXAMPLES_PATH")
	if examplesPath == "" {
		return
	}

	request := response.Request
	query := ""
	if request.URL.RawQuery != "" {
		query = "?" + request.URL.RawQuery
	}

	b := &strings.Builder{}

	fmt.Fprintf(b, "# %s\n%s\n", title, cropTabs(description))

	b.WriteString("```http\n")
	fmt.Fprintf(b, "%s %s%s %s\n", request.Method, request.URL.Path, query, request.Proto)
	b.WriteString("Host: example.com\n")
	writeHeaders(b, request.Header)
	fmt.Fprintf(b, "\n%s\n\n", formatJSON(response.BodyRequestString()))

	fmt.Fprintf(b, "%s %s\n", response.Proto, response.Status)
	writeHeaders(b, response.Header)
	fmt.Fprintf(b, "\n%s\n", formatJSON(response.BodyString()))
	b.WriteString("```\n")

	filename := strings.ReplaceAll(strings.ToLower(title), " ", "_") + ".md"
	p := path.Join(examplesPath, path.Clean(filename))
	err := os.WriteFile(p, []byte(b.String()), 0666)
	if err != nil {
		fmt.Println("Saving err:", err)
	}
}

func writeHeaders(b *strings.Builder, header map[string][]string) {

	keys := []string{}
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == "Date" {
			b.WriteString("Date: Mon, 15 Aug 2022 02:08:13 GMT\n")
			continue
		}
		for _, v := range header[k] {
			fmt.Fprintf(b, "%s: %s\n", k, v)
		}
	}
}

func formatJSON(body string) string {

	var i interface{}
	err := json.Unmarshal([]byte(body), &i)
	if err != nil {
		return body
	}

	pretty, err := json.Marshal(i, jsontext.WithIndent("    "))
	if err != nil {
		return body
	}

	return string(pretty)
}

// cropTabs removes the indentation shared by every non blank line.
func cropTabs(d string) string {

	lines := strings.Split(strings.Trim(d, "\n"), "\n")

	shared := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, "\t"))
		if shared < 0 || n < shared {
			shared = n
		}
	}
	if shared <= 0 {
		return strings.Join(lines, "\n")
	}

	prefix := strings.Repeat("\t", shared)
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}

	return strings.Join(lines, "\n")
}
