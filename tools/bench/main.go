// 并发压测：多个用户同时切换同一动态的反应、成对互发连接请求，结束后核对结果是否一致
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

// -------------------- 统计 --------------------

type APITestStats struct {
	mu        sync.Mutex
	latencies []time.Duration
	failed    int
}

func (s *APITestStats) Add(success bool, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !success {
		s.failed++
		return
	}
	s.latencies = append(s.latencies, latency)
}

func (s *APITestStats) Report(name string, took time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := len(s.latencies)
	fmt.Printf("\n=== %s ===\n", name)
	fmt.Printf("耗时: %v 成功: %d 失败: %d\n", took, ok, s.failed)
	if ok == 0 {
		return
	}
	sort.Slice(s.latencies, func(i, j int) bool { return s.latencies[i] < s.latencies[j] })
	var sum time.Duration
	for _, l := range s.latencies {
		sum += l
	}
	fmt.Printf("延迟 平均: %v p50: %v p99: %v 最大: %v\n",
		sum/time.Duration(ok),
		s.latencies[ok/2],
		s.latencies[ok*99/100],
		s.latencies[ok-1],
	)
	if took > 0 {
		fmt.Printf("QPS: %.2f\n", float64(ok)/took.Seconds())
	}
}

// -------------------- HTTP --------------------

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	base string
	http *http.Client
}

func (c *client) call(method, path, token string, body, out interface{}) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, err
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, env.Message)
	}
	if out != nil {
		return resp.StatusCode, json.Unmarshal(env.Data, out)
	}
	return resp.StatusCode, nil
}

func (c *client) timed(stats *APITestStats, method, path, token string, body, out interface{}) error {
	start := time.Now()
	_, err := c.call(method, path, token, body, out)
	stats.Add(err == nil, time.Since(start))
	return err
}

type account struct {
	ID    uint
	Token string
}

func (c *client) register() (*account, error) {
	name := "bench_" + uuid.NewString()[:8]
	var resp struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	_, err := c.call(http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username":   name,
		"first_name": "Bench",
		"last_name":  name[6:],
		"email":      name + "@bench.local",
		"password":   "bench-password",
		"password2":  "bench-password",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &account{ID: resp.User.ID, Token: resp.AccessToken}, nil
}

// -------------------- 场景 --------------------

// runReactions 每个用户对同一动态切换 LIKE rounds 次，奇数次的用户最终保留反应
func runReactions(c *client, accounts []*account, rounds int) error {
	var post struct {
		ID uint `json:"id"`
	}
	if _, err := c.call(http.MethodPost, "/api/v1/posts", accounts[0].Token, map[string]string{"content": "bench post"}, &post); err != nil {
		return err
	}
	path := fmt.Sprintf("/api/v1/posts/%d/reactions", post.ID)

	stats := &APITestStats{}
	var wg sync.WaitGroup
	start := time.Now()
	for _, a := range accounts {
		wg.Add(1)
		go func(a *account) {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				_ = c.timed(stats, http.MethodPost, path, a.Token, map[string]string{"kind": "LIKE"}, nil)
			}
		}(a)
	}
	wg.Wait()
	stats.Report("反应切换", time.Since(start))

	var summary struct {
		Total int64 `json:"total"`
	}
	if _, err := c.call(http.MethodGet, path, accounts[0].Token, nil, &summary); err != nil {
		return err
	}
	var want int64
	if rounds%2 == 1 && stats.failed == 0 {
		want = int64(len(accounts))
	}
	fmt.Printf("反应总数: %d 期望: %d\n", summary.Total, want)
	if stats.failed == 0 && summary.Total != want {
		return fmt.Errorf("reaction total mismatch: got %d want %d", summary.Total, want)
	}
	return nil
}

// runConnections 相邻两个用户同时互发请求，每对最终只能有一条记录
func runConnections(c *client, accounts []*account) error {
	stats := &APITestStats{}
	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i+1 < len(accounts); i += 2 {
		a, b := accounts[i], accounts[i+1]
		for _, pair := range [][2]*account{{a, b}, {b, a}} {
			wg.Add(1)
			go func(from, to *account) {
				defer wg.Done()
				_ = c.timed(stats, http.MethodPost, fmt.Sprintf("/api/v1/connections/send/%d", to.ID), from.Token, nil, nil)
			}(pair[0], pair[1])
		}
	}
	wg.Wait()
	stats.Report("互发连接请求", time.Since(start))

	for i := 0; i+1 < len(accounts); i += 2 {
		var lists map[string][]json.RawMessage
		if _, err := c.call(http.MethodGet, "/api/v1/connections", accounts[i].Token, nil, &lists); err != nil {
			return err
		}
		n := len(lists["connections"]) + len(lists["pending_sent"]) + len(lists["pending_received"])
		if n != 1 {
			return fmt.Errorf("user %d has %d connection rows, want 1", accounts[i].ID, n)
		}
	}
	fmt.Println("连接记录核对通过")
	return nil
}

// -------------------- 入口 --------------------

func main() {
	app := &cli.App{
		Name:  "bench",
		Usage: "并发切换反应与互发连接请求，并核对结果",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base", Usage: "服务地址", Value: "http://localhost:8080", EnvVars: []string{"BENCH_BASE_URL"}},
			&cli.IntFlag{Name: "users", Aliases: []string{"n"}, Usage: "并发用户数", Value: 20},
			&cli.IntFlag{Name: "rounds", Usage: "每个用户切换反应的次数", Value: 5},
		},
		Action: func(ctx *cli.Context) error {
			n := ctx.Int("users")
			if n < 2 {
				return fmt.Errorf("need at least 2 users")
			}
			c := &client{base: ctx.String("base"), http: &http.Client{Timeout: 8 * time.Second}}

			fmt.Println("=== 职业社交网络并发测试 ===")
			fmt.Printf("开始时间: %s\n", time.Now().Format("2006-01-02 15:04:05"))
			fmt.Printf("目标: %s 用户: %d 切换次数: %d\n", c.base, n, ctx.Int("rounds"))

			accounts := make([]*account, 0, n)
			for i := 0; i < n; i++ {
				a, err := c.register()
				if err != nil {
					return fmt.Errorf("register: %w", err)
				}
				accounts = append(accounts, a)
			}

			if err := runReactions(c, accounts, ctx.Int("rounds")); err != nil {
				return err
			}
			if err := runConnections(c, accounts); err != nil {
				return err
			}
			fmt.Println("\n=== 测试完成 ===")
			return nil
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
