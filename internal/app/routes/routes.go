package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/lempar/academia/internal/app/controllers"
	"github.com/lempar/academia/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	homeController *controllers.HomeController,
	authController *controllers.AuthController,
	studentController *controllers.StudentController,
	accountController *controllers.AccountController,
	apiController *controllers.APIController,
	authMiddleware *middleware.AuthMiddleware,
	uploadDir string,
) {
	// --- Public routes ---
	router.GET("/", homeController.Home)
	router.GET("/health", homeController.Health)

	router.GET("/login", authController.LoginPage)
	router.POST("/login", authController.Login)
	router.GET("/registro", authController.RegisterPage)
	router.POST("/registro", authController.Register)
	router.GET("/logout", authMiddleware.LoginRequired(), authController.Logout)

	// Stored photos
	router.Static("/uploads", uploadDir)

	// --- Roster, any logged-in account ---
	students := router.Group("/alumnos")
	students.Use(authMiddleware.LoginRequired())
	{
		students.GET("", studentController.ListStudents)
		students.GET("/:id", studentController.GetStudent)

		// Mutations are admin only
		studentsAdmin := students.Group("")
		studentsAdmin.Use(authMiddleware.AdminRequired())
		{
			studentsAdmin.GET("/crear", studentController.NewStudent)
			studentsAdmin.POST("/crear", studentController.CreateStudent)
			studentsAdmin.GET("/editar/:id", studentController.EditStudent)
			studentsAdmin.POST("/editar/:id", studentController.UpdateStudent)
			studentsAdmin.POST("/eliminar/:id", studentController.DeleteStudent)
			studentsAdmin.GET("/exportar", studentController.ExportStudents)
		}
	}

	// --- Account management, admin only ---
	accounts := router.Group("/usuarios")
	accounts.Use(authMiddleware.LoginRequired(), authMiddleware.AdminRequired())
	{
		accounts.GET("", accountController.ListAccounts)
		accounts.GET("/crear", accountController.NewAccount)
		accounts.POST("/crear", accountController.CreateAccount)
		accounts.POST("/eliminar/:id", accountController.DeleteAccount)
	}

	// --- JSON API, session required ---
	api := router.Group("/api")
	api.Use(authMiddleware.APIAuth())
	{
		api.GET("/alumnos", apiController.ListStudents)
		api.GET("/alumno/:id", apiController.GetStudent)
	}

	router.NoRoute(homeController.NotFound)
}
