package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"pro-network/config"

	"github.com/go-sql-driver/mysql"
	"github.com/urfave/cli/v2"
)

// tables 按依赖顺序排列，子表在前
var tables = []string{
	"notification",
	"reaction",
	"comment",
	"post",
	"connection",
	"experience",
	"user_skill",
	"skill",
	"profile",
	"user",
}

func main() {
	app := &cli.App{
		Name:  "reset_db",
		Usage: "清空全部业务表数据并重置自增ID（保留表结构）",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "跳过确认"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	loaded, err := config.LoadConfig()
	if err != nil {
		return err
	}
	cfg := loaded.Database

	if cfg.Driver == "sqlite" {
		return resetSQLite(c, cfg.Path)
	}

	dsn := (&mysql.Config{
		User:                 cfg.Username,
		Passwd:               cfg.Password,
		Net:                  "tcp",
		Addr:                 fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		DBName:               cfg.Database,
		Params:               map[string]string{"charset": cfg.Charset},
		ParseTime:            true,
		AllowNativePasswords: true,
	}).FormatDSN()

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	fmt.Println("Database connected successfully")
	fmt.Printf("Database: %s\n", cfg.Database)

	if !confirm(c, fmt.Sprintf("tables %v", tables)) {
		fmt.Println("Operation cancelled")
		return nil
	}

	// 关闭外键检查，避免清表顺序受约束影响
	_, _ = db.Exec("SET FOREIGN_KEY_CHECKS=0")
	defer db.Exec("SET FOREIGN_KEY_CHECKS=1")

	for _, table := range tables {
		fmt.Printf("Clearing table %s... ", table)
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM `%s`", table)); err != nil {
			fmt.Printf("Failed: %v\n", err)
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE `%s` AUTO_INCREMENT = 1", table)); err != nil {
			fmt.Printf("Failed to reset auto-increment: %v\n", err)
			continue
		}
		fmt.Println("Success")
	}

	fmt.Println("\nDatabase reset completed!")
	fmt.Println("All table data cleared, table structure preserved")
	return nil
}

// resetSQLite sqlite 直接删除数据库文件，服务启动时会重新迁移
func resetSQLite(c *cli.Context, path string) error {
	if !confirm(c, path) {
		fmt.Println("Operation cancelled")
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	fmt.Printf("Removed %s\n", path)
	return nil
}

func confirm(c *cli.Context, target string) bool {
	if c.Bool("yes") {
		return true
	}
	fmt.Printf("\nWARNING: This operation will CLEAR ALL DATA in %s!\n", target)
	fmt.Print("Type 'YES' to confirm: ")
	var answer string
	fmt.Scanln(&answer)
	return answer == "YES"
}
