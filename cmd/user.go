package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/nsxzhou1114/blog-platform/internal/dto"
	"github.com/nsxzhou1114/blog-platform/internal/service"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// userCmd 用户管理命令
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "用户管理命令",
	Long:  `用户管理相关的命令，包括创建管理员、列出用户、修改角色和状态`,
}

// createAdminCmd 创建管理员用户命令
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "创建管理员用户",
	Long:  `交互式创建管理员用户`,
	Run: func(cmd *cobra.Command, args []string) {
		createAdminUser()
	},
}

var listSearch string

// listUsersCmd 列出用户命令
var listUsersCmd = &cobra.Command{
	Use:   "list",
	Short: "列出用户",
	Long:  `列出系统中最近注册的用户`,
	Run: func(cmd *cobra.Command, args []string) {
		listUsers()
	},
}

// setRoleCmd 修改用户角色命令
// 示例：./blog-platform user set-role alice@example.com ADMIN
var setRoleCmd = &cobra.Command{
	Use:   "set-role [email] [USER|ADMIN]",
	Short: "修改用户角色",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setUserRole(args[0], strings.ToUpper(args[1]))
	},
}

// setStatusCmd 启用或禁用用户命令
// 示例：./blog-platform user set-status alice@example.com inactive
var setStatusCmd = &cobra.Command{
	Use:   "set-status [email] [active|inactive]",
	Short: "启用或禁用用户",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setUserStatus(args[0], args[1])
	},
}

func init() {
	listUsersCmd.Flags().StringVarP(&listSearch, "search", "s", "", "按名称或邮箱过滤")

	userCmd.AddCommand(createAdminCmd)
	userCmd.AddCommand(listUsersCmd)
	userCmd.AddCommand(setRoleCmd)
	userCmd.AddCommand(setStatusCmd)

	rootCmd.AddCommand(userCmd)
}

func mustApp() *app {
	a, err := newApp()
	if err != nil {
		fmt.Printf("系统初始化失败: %v\n", err)
		os.Exit(1)
	}
	return a
}

// readPassword 从终端读取不回显的密码
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// createAdminUser 创建管理员用户
func createAdminUser() {
	a := mustApp()
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("请输入管理员名称: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("请输入管理员邮箱: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	password, err := readPassword("请输入管理员密码: ")
	if err != nil {
		fmt.Printf("读取密码失败: %v\n", err)
		return
	}
	confirm, err := readPassword("请确认管理员密码: ")
	if err != nil {
		fmt.Printf("读取确认密码失败: %v\n", err)
		return
	}
	if password != confirm {
		fmt.Println("两次输入的密码不一致")
		return
	}
	if len(password) < 8 {
		fmt.Println("密码至少需要8位")
		return
	}

	user, err := a.services.Users.CreateAdmin(context.Background(), name, email, password)
	if err != nil {
		fmt.Printf("创建管理员用户失败: %v\n", err)
		return
	}

	fmt.Printf("管理员用户创建成功！\n")
	fmt.Printf("ID: %d\n", user.ID)
	fmt.Printf("邮箱: %s\n", user.Email)
}

// listUsers 列出用户
func listUsers() {
	a := mustApp()

	q := dto.UserQuery{Search: listSearch}
	q.Limit = dto.MaxLimit
	res, err := a.services.Users.List(context.Background(), service.System, q)
	if err != nil {
		fmt.Printf("查询用户列表失败: %v\n", err)
		return
	}

	fmt.Printf("%-5s %-20s %-30s %-8s %-6s %-8s %-16s\n",
		"ID", "名称", "邮箱", "角色", "状态", "文章数", "注册时间")
	fmt.Println(strings.Repeat("-", 100))

	for _, u := range res.Users {
		status := "启用"
		if !u.IsActive {
			status = "禁用"
		}
		var articles int64
		if u.Count != nil {
			articles = u.Count.Articles
		}
		fmt.Printf("%-5d %-20s %-30s %-8s %-6s %-8d %-16s\n",
			u.ID, u.Name, u.Email, u.Role, status, articles, u.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("共 %d 个用户\n", res.Pagination.Total)
}

// setUserRole 修改用户角色
func setUserRole(email, role string) {
	a := mustApp()

	if err := a.services.Users.SetRole(context.Background(), email, role); err != nil {
		fmt.Printf("修改角色失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("用户 %s 的角色已更新为: %s\n", email, role)
}

// setUserStatus 更新用户状态
func setUserStatus(email, status string) {
	var active bool
	switch status {
	case "active":
		active = true
	case "inactive":
		active = false
	default:
		fmt.Println("状态值必须是 active 或 inactive")
		os.Exit(1)
	}

	a := mustApp()
	if err := a.services.Users.SetActive(context.Background(), email, active); err != nil {
		fmt.Printf("更新用户状态失败: %v\n", err)
		os.Exit(1)
	}

	statusText := "启用"
	if !active {
		statusText = "禁用"
	}
	fmt.Printf("用户 %s 的状态已更新为: %s\n", email, statusText)
}
