// widgetclient is a CLI tool for exercising the storefront widget proxy.
// Each command performs a single operation, making it composable for scripts.
//
// Commands:
//
//	widgetclient price -proxy URL -product ID [-variant ID] [-group NAME] [-tags a,b] [-qty N]
//	widgetclient customer -proxy URL [-customer ID]
//	widgetclient table -proxy URL -id <table-id> [-customer ID]
//	widgetclient create-table -proxy URL -name NAME [-products 1,2] [-categories 18] [-publish]
//	widgetclient install -proxy URL
//
// Examples:
//
//	ID=$(widgetclient create-table -proxy http://localhost:8080 -name "Bulk" -products 111 -publish -q)
//	widgetclient table -proxy http://localhost:8080 -id $ID -customer 42
//	widgetclient price -proxy http://localhost:8080 -product 111 -group wholesale -qty 10
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dunglas/httpsfv"
)

var client = &http.Client{Timeout: 30 * time.Second}

// Global flags (apply to all commands)
var (
	proxyURL      string
	storeHash     string
	widgetVersion string
	adminToken    string
	quiet         bool
	noColor       bool
	verbose       bool
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen, colorYellow = "", "", "", ""
	colorCyan, colorGray, colorBold = "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "price":
		runPrice(args)
	case "customer":
		runCustomer(args)
	case "table":
		runTable(args)
	case "create-table":
		runCreateTable(args)
	case "install":
		runInstall(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `widgetclient - storefront widget proxy test tool

Usage:
  widgetclient <command> [options]

Commands:
  price         Resolve a price quote for a product
  customer      Resolve a customer's context (group, wholesale flag, tags)
  table         Fetch a product table as the storefront sees it
  create-table  Create a product table
  install       Ensure the loader script and widget template exist

Examples:
  # Price 10 units for the wholesale group
  widgetclient price -proxy http://localhost:8080 -product 111 -group wholesale -qty 10

  # Create and publish a table, then view it as customer 42
  ID=$(widgetclient create-table -proxy http://localhost:8080 -name "Bulk" -products 111 -publish -q)
  widgetclient table -proxy http://localhost:8080 -id "$ID" -customer 42

Run 'widgetclient <command> -h' for command-specific options.
`)
}

// commonFlags registers the flags every command accepts.
func commonFlags(fs *flag.FlagSet) {
	fs.StringVar(&proxyURL, "proxy", "http://localhost:8080", "Widget proxy base URL")
	fs.StringVar(&storeHash, "store", "", "Store hash sent in the Widget-Context header")
	fs.StringVar(&widgetVersion, "widget-version", "", "Widget bundle version sent in the Widget-Context header")
	fs.StringVar(&adminToken, "admin-token", os.Getenv("ADMIN_TOKEN"), "Bearer token for /api/admin/ routes (default $ADMIN_TOKEN)")
	fs.BoolVar(&quiet, "q", false, "Quiet mode - only output the key result")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - show full request/response")
}

func parseFlags(fs *flag.FlagSet, args []string) {
	fs.Parse(args)
	if noColor {
		disableColors()
	}
}

// =============================================================================
// STOREFRONT COMMANDS
// =============================================================================

func runPrice(args []string) {
	fs := flag.NewFlagSet("price", flag.ExitOnError)
	commonFlags(fs)
	var productID, variantID, group, tags string
	var quantity int
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	fs.StringVar(&variantID, "variant", "", "Variant ID")
	fs.StringVar(&group, "group", "", "Customer group (default guest)")
	fs.StringVar(&tags, "tags", "", "Comma-separated customer tags")
	fs.IntVar(&quantity, "qty", 1, "Quantity")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: widgetclient price -product ID [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	parseFlags(fs, args)

	if productID == "" {
		fs.Usage()
		os.Exit(1)
	}

	q := url.Values{}
	q.Set("productId", productID)
	q.Set("quantity", fmt.Sprint(quantity))
	if variantID != "" {
		q.Set("variantId", variantID)
	}
	if group != "" {
		q.Set("customerGroup", group)
	}
	if tags != "" {
		q.Set("customerTags", tags)
	}

	resp, err := doRequest("GET", "/api/storefront/pricing?"+q.Encode(), nil, "")
	if err != nil {
		fatal("Failed to resolve price: %v", err)
	}

	final, _ := resp["finalPrice"].(string)
	if quiet {
		fmt.Println(final)
		return
	}
	printSuccess("Price resolved")
	fmt.Printf("  Group: %s%v%s\n", colorCyan, resp["customerGroup"], colorReset)
	fmt.Printf("  Calculated: %v %v\n", resp["calculatedPrice"], resp["currency"])
	if pl, ok := resp["priceListName"].(string); ok && pl != "" {
		fmt.Printf("  Price list: %s (%v)\n", pl, resp["priceListPrice"])
	}
	if qb, ok := resp["quantityBreakPrice"]; ok && qb != nil {
		fmt.Printf("  Quantity break: %v\n", qb)
	}
	fmt.Printf("  Final: %s%s%s\n", colorGreen, final, colorReset)
}

func runCustomer(args []string) {
	fs := flag.NewFlagSet("customer", flag.ExitOnError)
	commonFlags(fs)
	var customerID string
	var viaHeader bool
	fs.StringVar(&customerID, "customer", "", "Customer ID (omit for a guest)")
	fs.BoolVar(&viaHeader, "header", false, "Send the customer in Widget-Context instead of the query")
	parseFlags(fs, args)

	path := "/api/storefront/customer-context"
	headerCustomer := ""
	switch {
	case viaHeader:
		headerCustomer = customerID
	case customerID != "":
		path += "?customerId=" + url.QueryEscape(customerID)
	}

	resp, err := doRequest("GET", path, nil, headerCustomer)
	if err != nil {
		fatal("Failed to resolve customer context: %v", err)
	}

	group, _ := resp["customerGroup"].(string)
	if quiet {
		fmt.Println(group)
		return
	}
	printSuccess("Customer context resolved")
	fmt.Printf("  Logged in: %v\n", resp["isLoggedIn"])
	fmt.Printf("  Group: %s%s%s (wholesale: %v)\n", colorCyan, group, colorReset, resp["isWholesale"])
	fmt.Printf("  Tags: %v\n", resp["customerTags"])
}

func runTable(args []string) {
	fs := flag.NewFlagSet("table", flag.ExitOnError)
	commonFlags(fs)
	var tableID, customerID string
	fs.StringVar(&tableID, "id", "", "Product table ID (required)")
	fs.StringVar(&customerID, "customer", "", "View as this customer")
	parseFlags(fs, args)

	if tableID == "" {
		fs.Usage()
		os.Exit(1)
	}

	path := "/api/storefront/tables/" + url.PathEscape(tableID)
	if customerID != "" {
		path += "?customerId=" + url.QueryEscape(customerID)
	}

	resp, err := doRequest("GET", path, nil, "")
	if err != nil {
		fatal("Failed to fetch table: %v", err)
	}

	rows, _ := resp["rows"].([]any)
	if quiet {
		fmt.Println(len(rows))
		return
	}
	printSuccess("Table retrieved")
	for _, row := range rows {
		if r, ok := row.(map[string]any); ok {
			fmt.Printf("  - %s %s%v%s\n", r["name"], colorGreen, r["price"], colorReset)
		}
	}
}

// =============================================================================
// ADMIN COMMANDS
// =============================================================================

func runCreateTable(args []string) {
	fs := flag.NewFlagSet("create-table", flag.ExitOnError)
	commonFlags(fs)
	var name, products, categories string
	var publish bool
	var pageSize int
	fs.StringVar(&name, "name", "", "Table name (required)")
	fs.StringVar(&products, "products", "", "Comma-separated product IDs (manual source)")
	fs.StringVar(&categories, "categories", "", "Comma-separated category IDs (category source)")
	fs.BoolVar(&publish, "publish", false, "Publish the table to the storefront")
	fs.IntVar(&pageSize, "page-size", 0, "Rows per page (default server-side)")
	parseFlags(fs, args)

	if name == "" {
		fs.Usage()
		os.Exit(1)
	}

	source := map[string]any{"type": "all"}
	switch {
	case products != "":
		source = map[string]any{"type": "manual", "productIds": strings.Split(products, ",")}
	case categories != "":
		source = map[string]any{"type": "category", "categoryIds": strings.Split(categories, ",")}
	}
	body := map[string]any{"name": name, "source": source}
	if publish {
		body["status"] = "published"
	}
	if pageSize > 0 {
		body["pageSize"] = pageSize
	}

	resp, err := doRequest("POST", "/api/admin/tables", body, "")
	if err != nil {
		fatal("Failed to create table: %v", err)
	}

	id, _ := resp["productTableId"].(string)
	if quiet {
		fmt.Println(id)
		return
	}
	printSuccess("Table created")
	fmt.Printf("  ID: %s%s%s\n", colorCyan, id, colorReset)
	if syncErr, ok := resp["syncError"].(map[string]any); ok {
		printWarning("Storefront widget not synced: %v", syncErr["message"])
	}
}

func runInstall(args []string) {
	fs := flag.NewFlagSet("install", flag.ExitOnError)
	commonFlags(fs)
	parseFlags(fs, args)

	resp, err := doRequest("POST", "/api/admin/install", nil, "")
	if err != nil {
		fatal("Install failed: %v", err)
	}
	printSuccess("Storefront assets installed")
	fmt.Printf("  Template: %v\n", resp["templateUuid"])
	if s, ok := resp["scriptUuid"]; ok {
		fmt.Printf("  Script: %v\n", s)
	}
}

// =============================================================================
// HTTP HELPERS
// =============================================================================

// widgetContextHeader encodes the Widget-Context structured header, or ""
// when there is nothing to send.
func widgetContextHeader(customerID string) (string, error) {
	dict := httpsfv.NewDictionary()
	if storeHash != "" {
		dict.Add("store", httpsfv.NewItem(storeHash))
	}
	if customerID != "" {
		dict.Add("customer", httpsfv.NewItem(customerID))
	}
	if widgetVersion != "" {
		dict.Add("version", httpsfv.NewItem(widgetVersion))
	}
	if len(dict.Names()) == 0 {
		return "", nil
	}
	return httpsfv.Marshal(dict)
}

func doRequest(method, path string, body any, headerCustomer string) (map[string]any, error) {
	var reqBody io.Reader
	var reqJSON []byte

	if body != nil {
		var err error
		reqJSON, err = json.MarshalIndent(body, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(reqJSON)
	}

	req, err := http.NewRequest(method, proxyURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	wc, err := widgetContextHeader(headerCustomer)
	if err != nil {
		return nil, fmt.Errorf("encoding Widget-Context: %w", err)
	}
	if wc != "" {
		req.Header.Set("Widget-Context", wc)
	}
	if adminToken != "" && strings.HasPrefix(path, "/api/admin/") {
		req.Header.Set("Authorization", "Bearer "+adminToken)
	}

	if !quiet {
		printRequest(method, path, reqJSON)
	}

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if !quiet {
		printResponse(resp.StatusCode, respBody, duration)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return result, nil
}

func printRequest(method, path string, body []byte) {
	fmt.Printf("\n%s▶ REQUEST%s %s%s %s%s\n", colorYellow, colorReset, colorBold, method, path, colorReset)
	if body != nil {
		printJSON(body, "  ")
	}
}

func printResponse(status int, body []byte, duration time.Duration) {
	statusColor := colorGreen
	if status >= 400 {
		statusColor = colorRed
	}
	fmt.Printf("\n%s◀ RESPONSE%s %s%d%s (%v)\n", colorCyan, colorReset, statusColor, status, colorReset, duration)
	printJSON(body, "  ")
}

func printJSON(data []byte, prefix string) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, prefix, "  "); err != nil {
		fmt.Printf("%s%s\n", prefix, string(data))
		return
	}

	output := pretty.String()
	if !verbose {
		lines := strings.Split(output, "\n")
		if len(lines) > 30 {
			lines = append(lines[:25], fmt.Sprintf("%s  %s(%d more lines, use -v for full output)%s", prefix, colorGray, len(lines)-25, colorReset))
			output = strings.Join(lines, "\n")
		}
	}
	fmt.Println(output)
}

func printSuccess(format string, args ...any) {
	if !quiet {
		fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func printWarning(format string, args ...any) {
	fmt.Printf("%s⚠ %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
