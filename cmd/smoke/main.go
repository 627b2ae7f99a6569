package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fyerfyer/travel-plan/api/model"
	"github.com/fyerfyer/travel-plan/pkg/taskqueue"
)

// 对正在运行的服务做一次端到端检查
func main() {
	base := flag.String("base", "http://localhost:8080", "Server base URL")
	generate := flag.Bool("generate", false, "Also generate a plan (calls the LLM)")
	async := flag.Bool("async", false, "Generate through the task queue")
	flag.Parse()

	c := &smokeClient{
		base: strings.TrimRight(*base, "/"),
		http: &http.Client{Timeout: 3 * time.Minute},
	}

	steps := []step{
		{"Health", c.health},
		{"Questions", c.questions},
		{"Parse", c.parse},
	}
	if *generate {
		steps = append(steps, step{"Generate", func() error { return c.generate(*async) }})
	}

	for _, step := range steps {
		fmt.Printf("\n=== %s ===\n", step.name)
		if err := step.run(); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Println("\nAll checks passed")
}

type step struct {
	name string
	run  func() error
}

type smokeClient struct {
	base string
	http *http.Client
}

// do 发送请求并把响应的data字段解码到out
func (c *smokeClient) do(method, path string, body interface{}, want int, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}
	fmt.Printf("%s %s -> %d\n", method, path, resp.StatusCode)

	if resp.StatusCode != want {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("error parsing JSON response: %w", err)
	}
	return json.Unmarshal(envelope.Data, out)
}

func (c *smokeClient) health() error {
	return c.do(http.MethodGet, "/api/health", nil, http.StatusOK, nil)
}

func (c *smokeClient) questions() error {
	var questions []map[string]interface{}
	if err := c.do(http.MethodGet, "/api/questions", nil, http.StatusOK, &questions); err != nil {
		return err
	}
	fmt.Printf("Questions: %d\n", len(questions))
	return nil
}

func (c *smokeClient) parse() error {
	text := "## Daily Itinerary\nDay 1: Arrival\n- Check in\n\n## Essential Packing List\n- Passport\n"
	var doc struct {
		Sections []map[string]interface{} `json:"sections"`
	}
	if err := c.do(http.MethodPost, "/api/plans/parse", model.ParseRequest{Text: text}, http.StatusOK, &doc); err != nil {
		return err
	}
	if len(doc.Sections) != 2 {
		return fmt.Errorf("expected 2 sections, got %d", len(doc.Sections))
	}
	return nil
}

func (c *smokeClient) generate(async bool) error {
	req := model.CreatePlanRequest{
		Answers: []string{"Lisbon", "mid-range", "food and history", "vegetarian", "relaxed"},
		Async:   async,
	}

	var planID string
	if async {
		var accepted model.AsyncPlanResponse
		if err := c.do(http.MethodPost, "/api/plans", req, http.StatusAccepted, &accepted); err != nil {
			return err
		}
		if err := c.waitTask(accepted.TaskID); err != nil {
			return err
		}
		planID = accepted.PlanID
	} else {
		var created model.PlanResponse
		if err := c.do(http.MethodPost, "/api/plans", req, http.StatusCreated, &created); err != nil {
			return err
		}
		planID = created.Plan.ID
	}

	var plan model.PlanResponse
	if err := c.do(http.MethodGet, "/api/plans/"+planID, nil, http.StatusOK, &plan); err != nil {
		return err
	}
	fmt.Printf("Plan %s: status=%s sections=%d days=%d\n",
		plan.Plan.ID, plan.Plan.Status, plan.Plan.SectionCount, plan.Plan.DayCount)

	if async && (plan.Plan.Status == "parsed" || plan.Plan.Status == "fallback") {
		if err := c.reparseAsync(planID); err != nil {
			return err
		}
	}

	return c.do(http.MethodDelete, "/api/plans/"+planID, nil, http.StatusOK, nil)
}

// waitTask 通过等待接口阻塞到任务结束，每次最多等待30秒
func (c *smokeClient) waitTask(taskID string) error {
	deadline := time.Now().Add(3 * time.Minute)
	for time.Now().Before(deadline) {
		var task taskqueue.TaskInfo
		if err := c.do(http.MethodGet, "/api/tasks/"+taskID+"/wait?timeout=30s", nil, http.StatusOK, &task); err != nil {
			return err
		}
		switch task.Status {
		case taskqueue.StatusCompleted:
			return nil
		case taskqueue.StatusFailed:
			return errors.New("task failed: " + task.Error)
		}
	}
	return errors.New("timed out waiting for task")
}

// reparseAsync 通过任务队列重新解析，并确认任务出现在计划的任务列表中
func (c *smokeClient) reparseAsync(planID string) error {
	var accepted model.AsyncPlanResponse
	if err := c.do(http.MethodPost, "/api/plans/"+planID+"/reparse?async=true", nil, http.StatusAccepted, &accepted); err != nil {
		return err
	}
	if err := c.waitTask(accepted.TaskID); err != nil {
		return err
	}

	var list model.PlanTasksResponse
	if err := c.do(http.MethodGet, "/api/plans/"+planID+"/tasks", nil, http.StatusOK, &list); err != nil {
		return err
	}
	fmt.Printf("Plan %s has %d tasks\n", planID, len(list.Tasks))
	for _, t := range list.Tasks {
		if t.ID == accepted.TaskID {
			return nil
		}
	}
	return fmt.Errorf("reparse task %s missing from plan tasks", accepted.TaskID)
}
