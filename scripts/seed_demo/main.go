// seed_demo 向数据库写入演示账号与文章，便于本地试用终端客户端。
package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/blogstory/internal/config"
	"github.com/blogstory/internal/db"
	"github.com/blogstory/internal/richtext"
	"github.com/blogstory/internal/service"
	"gorm.io/gorm"
)

type demoUser struct {
	Username string
	Email    string
	Password string
}

type demoPost struct {
	Author   string
	Title    string
	Markdown string
}

var demoUsers = []demoUser{
	{Username: "admin", Email: "admin@example.com", Password: "admin123"},
	{Username: "testuser", Email: "testuser@example.com", Password: "user123"},
}

var demoPosts = []demoPost{
	{
		Author:   "admin",
		Title:    "Getting started with BlogStory",
		Markdown: "# Welcome\n\nBlogStory is a small blog you can read and write **from the terminal**.\n\n- Browse posts on the home screen\n- Press `/` to search\n- Log in to write your own",
	},
	{
		Author:   "admin",
		Title:    "Writing posts in markdown",
		Markdown: "The editor takes markdown and stores HTML.\n\n## Formatting\n\nUse *emphasis*, **bold** and `code`.\n\n```go\nfmt.Println(\"hello\")\n```",
	},
	{
		Author:   "testuser",
		Title:    "Notes on concurrency in Go",
		Markdown: "Channels are for communication, mutexes for state.\n\n1. Keep goroutines owned\n2. Pass a context\n3. Close what you open",
	},
}

func main() {
	config.LoadEnvFile()
	cfg := config.Load()

	// 初始化数据库
	if err := db.Init(db.Options{Path: cfg.DatabasePath, URL: cfg.DatabaseURL}); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成演示数据...")
	created, err := seed(db.DB)
	if err != nil {
		log.Fatal("生成演示数据失败:", err)
	}
	fmt.Printf("演示数据生成完成！新增文章 %d 篇\n", created)
	for _, u := range demoUsers {
		fmt.Printf("用户: %s (密码: %s)\n", u.Email, u.Password)
	}
}

// seed 创建缺失的演示用户；仅当文章表为空时写入演示文章。返回新增文章数。
func seed(gdb *gorm.DB) (int, error) {
	users := service.NewUserService(gdb)
	posts := service.NewPostService(gdb)

	ids := make(map[string]uint, len(demoUsers))
	for _, u := range demoUsers {
		user, err := users.Authenticate(u.Email, u.Password)
		if errors.Is(err, service.ErrInvalidCredentials) {
			user, err = users.Register(service.RegisterInput{Username: u.Username, Email: u.Email, Password: u.Password})
		}
		if err != nil {
			return 0, fmt.Errorf("user %s: %w", u.Username, err)
		}
		ids[u.Username] = user.ID
	}

	var count int64
	if err := gdb.Model(&db.Post{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		fmt.Println("文章已存在，跳过创建")
		return 0, nil
	}

	for _, p := range demoPosts {
		html, err := richtext.Render(p.Markdown)
		if err != nil {
			return 0, fmt.Errorf("render %q: %w", p.Title, err)
		}
		if _, err := posts.Create(service.PostInput{Title: p.Title, Content: html, UserID: ids[p.Author]}); err != nil {
			return 0, fmt.Errorf("post %q: %w", p.Title, err)
		}
	}
	return len(demoPosts), nil
}
