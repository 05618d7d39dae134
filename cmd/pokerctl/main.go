// Command pokerctl is the admin client for pokersrv's introspection
// endpoints (spec.md §6 "Administrative endpoints"): health, the live
// table list, and per-table inspection, plus a polling TUI dashboard.
// Subcommand shape grounded on lox-pokerforbots' cmd/server kong usage;
// the dashboard's Model/Update/View and lipgloss palette are grounded on
// the teacher's pkg/ui.PokerUI, generalized from a per-action poker
// client menu to a read-only admin table browser.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true).MarginLeft(1)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("83"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
)

// health mirrors internal/metrics.Health's JSON shape without importing
// internal/ (pokerctl only ever talks to pokersrv over HTTP, matching
// the teacher's admin client staying decoupled from the server process).
type health struct {
	ActiveTables           int    `json:"activeTables"`
	ResidentMemoryBytes    uint64 `json:"residentMemoryBytes"`
	OpenFileDescriptors    int    `json:"openFileDescriptors"`
	FreeSystemMemoryBytes  uint64 `json:"freeSystemMemoryBytes"`
	TotalSystemMemoryBytes uint64 `json:"totalSystemMemoryBytes"`
	ProcfsAvailable        bool   `json:"procfsAvailable"`
}

type tableView struct {
	TableID      string `json:"tableId"`
	Phase        string `json:"phase"`
	HandNumber   int    `json:"handNumber"`
	DealerButton int    `json:"dealerButton"`
	Seats        []struct {
		Index    int    `json:"index"`
		PlayerID string `json:"playerId"`
		Stack    int64  `json:"stack"`
	} `json:"seats"`
	PotLayers []struct {
		Amount int64 `json:"amount"`
	} `json:"potLayers"`
}

// pot sums every layer's amount for display; the wire protocol carries
// layers rather than a single total (spec.md §6 tableState).
func (v tableView) pot() int64 {
	var total int64
	for _, l := range v.PotLayers {
		total += l.Amount
	}
	return total
}

type adminClient struct {
	baseURL string
	http    *http.Client
}

func newAdminClient(baseURL string) *adminClient {
	return &adminClient{baseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: 5 * time.Second}}
}

func (c *adminClient) getJSON(path string, v any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("not found: %s", path)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *adminClient) Health() (health, error) {
	var h health
	err := c.getJSON("/admin/health", &h)
	return h, err
}

func (c *adminClient) Tables() ([]string, error) {
	var ids []string
	err := c.getJSON("/admin/tables", &ids)
	return ids, err
}

func (c *adminClient) Table(id string) (tableView, error) {
	var v tableView
	err := c.getJSON("/admin/tables/"+id, &v)
	return v, err
}

// CLI is pokerctl's kong command surface.
type CLI struct {
	Server string `kong:"default='http://127.0.0.1:4480',help='pokersrv base URL.'"`

	Health    healthCmd    `kong:"cmd,help='Print process/host health.'"`
	Tables    tablesCmd    `kong:"cmd,help='List active table ids.'"`
	Table     tableCmd     `kong:"cmd,help='Inspect one table.'"`
	Dashboard dashboardCmd `kong:"cmd,help='Live-polling TUI dashboard.'"`
}

type healthCmd struct{}

func (healthCmd) Run(c *adminClient) error {
	h, err := c.Health()
	if err != nil {
		return err
	}
	fmt.Printf("active tables:   %d\n", h.ActiveTables)
	fmt.Printf("resident memory: %d bytes\n", h.ResidentMemoryBytes)
	fmt.Printf("open fds:        %d\n", h.OpenFileDescriptors)
	fmt.Printf("free memory:     %d bytes\n", h.FreeSystemMemoryBytes)
	fmt.Printf("total memory:    %d bytes\n", h.TotalSystemMemoryBytes)
	fmt.Printf("procfs:          %v\n", h.ProcfsAvailable)
	return nil
}

type tablesCmd struct{}

func (tablesCmd) Run(c *adminClient) error {
	ids, err := c.Tables()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("(no active tables)")
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

type tableCmd struct {
	ID string `kong:"arg,help='Table id.'"`
}

func (t tableCmd) Run(c *adminClient) error {
	v, err := c.Table(t.ID)
	if err != nil {
		return err
	}
	fmt.Printf("table %s  phase=%s  hand=%d  pot=%d  dealer=%d\n", v.TableID, v.Phase, v.HandNumber, v.pot(), v.DealerButton)
	for _, s := range v.Seats {
		fmt.Printf("  seat %d: %-16s stack=%d\n", s.Index, s.PlayerID, s.Stack)
	}
	return nil
}

type dashboardCmd struct{}

func (dashboardCmd) Run(c *adminClient) error {
	p := tea.NewProgram(newDashboardModel(c))
	_, err := p.Run()
	return err
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokerctl"),
		kong.Description("Admin client for a pokersrv instance"),
		kong.UsageOnError(),
	)
	client := newAdminClient(cli.Server)
	if err := ctx.Run(client); err != nil {
		fmt.Fprintf(os.Stderr, "pokerctl: %v\n", err)
		os.Exit(1)
	}
}
