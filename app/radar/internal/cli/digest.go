package cli

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
)

// digestData 用于模板渲染的数据
type digestData struct {
	Date          string
	Total         int
	HighImpact    int
	Opportunities []*model.Opportunity
}

const digestTpl = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>GovIdea | Opportunity Digest</title>
    <style>
        :root { --primary-color: #2563eb; --bg-color: #f8fafc; --border-color: #e2e8f0; }
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background: var(--bg-color); color: #1e293b; margin: 0; padding: 20px; }
        .container { max-width: 900px; margin: 0 auto; }
        header { text-align: center; margin-bottom: 32px; }
        .meta { color: #64748b; }
        .card { background: #fff; border: 1px solid var(--border-color); border-radius: 12px; padding: 20px; margin-bottom: 20px; }
        .card-header { display: flex; justify-content: space-between; align-items: center; }
        .title { font-size: 1.3rem; font-weight: 700; }
        .badge { padding: 4px 10px; border-radius: 20px; font-size: 0.85rem; font-weight: bold; background: #e2e8f0; }
        .badge-high { background: #dcfce7; color: #166534; }
        .scores { margin: 10px 0; color: #334155; }
        .tags span { display: inline-block; background: #eff6ff; color: var(--primary-color); padding: 2px 8px; border-radius: 6px; margin-right: 6px; font-size: 0.8rem; }
        a { color: var(--primary-color); text-decoration: none; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>Opportunity Digest</h1>
            <div class="meta">{{ .Date }} • {{ .Total }} opportunities • {{ .HighImpact }} high impact</div>
        </header>
        {{range .Opportunities}}
        <div class="card">
            <div class="card-header">
                <div class="title">{{.Title}}</div>
                <div class="badge {{if .IsHighImpact}}badge-high{{end}}">Impact {{.ImpactScore}}</div>
            </div>
            <div class="meta">{{.Agency}} • {{.Category}} • {{.ContractValue}} • due {{.Deadline.Format "2006-01-02"}}</div>
            <div class="scores">Feasibility {{.FeasibilityScore}}% · Impact {{.ImpactScore}}%</div>
            <p>{{.Description}}</p>
            {{if .Tags}}<div class="tags">{{range .Tags}}<span>{{.}}</span>{{end}}</div>{{end}}
            {{if .SourceURL}}<p><a href="{{.SourceURL}}" target="_blank">Source</a></p>{{end}}
        </div>
        {{end}}
    </div>
</body>
</html>
`

var digestTemplate = template.Must(template.New("digest").Parse(digestTpl))

func renderDigest(w io.Writer, opps []*model.Opportunity, now time.Time) error {
	data := digestData{
		Date:          now.Format("2006-01-02"),
		Total:         len(opps),
		Opportunities: opps,
	}
	for _, o := range opps {
		if o.IsHighImpact {
			data.HighImpact++
		}
	}
	return digestTemplate.Execute(w, data)
}

func digestCmd(cfgFn configFunc) *cobra.Command {
	var out string
	var limit int
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Render stored opportunities as a static HTML page",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := cfgFn()
			if err != nil {
				return err
			}
			store, err := openStore(ctx, cfg.DB)
			if err != nil {
				return fmt.Errorf("无法连接数据库: %w", err)
			}
			defer store.Close()

			opps, err := store.ListOpportunities(ctx, limit)
			if err != nil {
				return err
			}

			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := renderDigest(f, opps, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "digest written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "output/index.html", "output file")
	cmd.Flags().IntVar(&limit, "limit", 0, "number of opportunities, 0 for the default")
	return cmd
}
