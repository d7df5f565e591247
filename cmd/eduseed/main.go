// Command eduseed wipes the database and loads the demo data set: one admin,
// two teachers, two students, and a small course catalog. Intended for local
// development only.
package main

import (
	"context"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/anjali918/Student-Management-System/internal/auth"
	"github.com/anjali918/Student-Management-System/internal/storage"
)

type seedConfig struct {
	MongoURI string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017/edumanage"`
	MongoDB  string `env:"MONGO_DB" envDefault:"edumanage"`

	UsersCollection    string `env:"USERS_COLLECTION" envDefault:"users"`
	StudentsCollection string `env:"STUDENTS_COLLECTION" envDefault:"students"`
	CoursesCollection  string `env:"COURSES_COLLECTION" envDefault:"courses"`
}

type seedUser struct {
	name     string
	email    string
	password string
	role     auth.Role
}

var seedUsers = []seedUser{
	{"Admin User", "admin@example.com", "admin123", auth.RoleAdmin},
	{"Teacher One", "teacher1@example.com", "teacher123", auth.RoleTeacher},
	{"Teacher Two", "teacher2@example.com", "teacher123", auth.RoleTeacher},
	{"Student One", "student1@example.com", "student123", auth.RoleStudent},
	{"Student Two", "student2@example.com", "student123", auth.RoleStudent},
}

var seedCourses = []storage.Course{
	{Name: "Web Development", Code: "WEB101", Instructor: "Teacher One", Credits: 3, Duration: 12, Status: storage.CourseActive},
	{Name: "Data Science", Code: "DS201", Instructor: "Teacher One", Credits: 4, Duration: 12, Status: storage.CourseActive},
	{Name: "Machine Learning", Code: "ML301", Instructor: "Teacher One", Credits: 3, Duration: 12, Status: storage.CourseActive},
	{Name: "Database Systems", Code: "DBS401", Instructor: "Teacher One", Credits: 3, Duration: 12, Status: storage.CourseActive},
	{Name: "Software Engineering", Code: "SE501", Instructor: "Teacher One", Credits: 4, Duration: 12, Status: storage.CourseActive},
}

var seedStudents = []storage.Student{
	{Name: "Student One", Email: "student1@example.com", Course: "Web Development", GPA: 3.5, Status: storage.StudentActive},
	{Name: "Student Two", Email: "student2@example.com", Course: "Data Science", GPA: 3.8, Status: storage.StudentActive},
}

func main() {
	log := zerolog.New(os.Stdout).With().
		Str("component", "eduseed").
		Timestamp().
		Logger()

	var cfg seedConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cli, err := storage.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connect failed")
	}
	defer cli.Disconnect(context.Background())
	if err := storage.Ping(ctx, cli); err != nil {
		log.Fatal().Err(err).Msg("mongodb unreachable")
	}

	db := cli.Database(cfg.MongoDB)
	for _, coll := range []string{cfg.UsersCollection, cfg.StudentsCollection, cfg.CoursesCollection} {
		if err := db.Collection(coll).Drop(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", coll).Msg("drop failed")
		}
	}

	users := auth.NewMongoUserStore(db, cfg.UsersCollection)
	students := storage.NewMongoStudentStore(db, cfg.StudentsCollection)
	courses := storage.NewMongoCourseStore(db, cfg.CoursesCollection)

	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("users index creation failed")
	}
	if err := students.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("students index creation failed")
	}
	if err := courses.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("courses index creation failed")
	}

	for _, su := range seedUsers {
		hash, err := auth.HashPassword(auth.DefaultArgon, su.password)
		if err != nil {
			log.Fatal().Err(err).Msg("password hashing failed")
		}
		u := &auth.User{
			Name:     su.name,
			Email:    su.email,
			PassHash: hash,
			Role:     su.role,
			Approved: su.role == auth.RoleAdmin,
		}
		if err := users.Add(ctx, u); err != nil {
			log.Fatal().Err(err).Str("email", su.email).Msg("user seed failed")
		}
		log.Info().Str("email", u.Email).Str("role", string(u.Role)).Msg("seeded user")
	}

	for i := range seedCourses {
		c := seedCourses[i]
		if err := courses.Insert(ctx, &c); err != nil {
			log.Fatal().Err(err).Str("code", c.Code).Msg("course seed failed")
		}
		log.Info().Str("code", c.Code).Msg("seeded course")
	}

	for i := range seedStudents {
		st := seedStudents[i]
		if err := students.Insert(ctx, &st); err != nil {
			log.Fatal().Err(err).Str("email", st.Email).Msg("student seed failed")
		}
		log.Info().Str("email", st.Email).Msg("seeded student")
	}

	log.Info().Msg("database seeded successfully")
}
