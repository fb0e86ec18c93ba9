package database

import (
	"fmt"
	"log"

	"interview_coach_backend/internal/config"
	"interview_coach_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.InterviewQuestion{},
		&model.InterviewSession{},
		&model.SessionQuestion{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedQuestionBank(db)

	return db, nil
}

// seedQuestionBank 题库为空时写入一批默认题目，保证开箱即可创建会话
func seedQuestionBank(db *gorm.DB) {
	var count int64
	db.Model(&model.InterviewQuestion{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.InterviewQuestion{
		{Content: "请介绍一个你最有成就感的项目，以及你在其中承担的角色。", Category: model.CategoryBehavioral, Difficulty: model.DifficultyEasy, Enabled: true},
		{Content: "Tell me about a time you disagreed with a teammate. How did you resolve it?", Category: model.CategoryBehavioral, Difficulty: model.DifficultyMedium, Enabled: true},
		{Content: "Describe a situation where you had to deliver under a tight deadline. What trade-offs did you make?", Category: model.CategoryBehavioral, Difficulty: model.DifficultyMedium, Enabled: true},
		{Content: "Explain the difference between a process and a thread, and when you would prefer one over the other.", Category: model.CategoryTechnical, Difficulty: model.DifficultyMedium, Enabled: true},
		{Content: "What happens when you type a URL into a browser and press Enter? Walk through it as deeply as you can.", Category: model.CategoryTechnical, Difficulty: model.DifficultyMedium, Enabled: true},
		{Content: "How would you design an index for a table with heavy read traffic and occasional bulk writes?", Category: model.CategoryTechnical, Difficulty: model.DifficultyHard, Enabled: true},
		{Content: "请解释 HTTP 和 HTTPS 的区别，以及 TLS 握手的大致过程。", Category: model.CategoryTechnical, Difficulty: model.DifficultyMedium, Enabled: true},
		{Content: "Your service's p99 latency doubled overnight with no deploy. How do you investigate?", Category: model.CategoryProblemSolving, Difficulty: model.DifficultyHard, Enabled: true},
		{Content: "You have two conflicting bug reports from two major customers and one day. How do you prioritize?", Category: model.CategoryProblemSolving, Difficulty: model.DifficultyMedium, Enabled: true},
		{Content: "设计一个短链接服务，说明你的存储选型和扩容思路。", Category: model.CategoryProblemSolving, Difficulty: model.DifficultyHard, Enabled: true},
		{Content: "A stakeholder asks for a feature you believe is harmful to the product. What do you do?", Category: model.CategorySituational, Difficulty: model.DifficultyMedium, Enabled: true},
		{Content: "You discover a production incident caused by your own change from last week. Walk me through your next hour.", Category: model.CategorySituational, Difficulty: model.DifficultyMedium, Enabled: true},
		{Content: "How would you explain what an API is to someone with no technical background?", Category: model.CategoryCommunication, Difficulty: model.DifficultyEasy, Enabled: true},
		{Content: "Summarize the architecture of the last system you worked on in under two minutes.", Category: model.CategoryCommunication, Difficulty: model.DifficultyMedium, Enabled: true},
	}

	for i := range defaults {
		db.Create(&defaults[i])
	}
	log.Printf("Seeded question bank with %d default questions", len(defaults))
}
