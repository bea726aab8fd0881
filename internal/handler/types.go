package handler

import "wordrush/shared/models"

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateMeRequest struct {
	Name string `json:"name" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type submitBestRequest struct {
	Level string `json:"level"`
	Score *int   `json:"score" binding:"required"`
}

type createWordRequest struct {
	Term  string `json:"term" binding:"required"`
	Level string `json:"level" binding:"required"`
	Hint  string `json:"hint"`
}

type seedWordsRequest struct {
	Items []models.WordInput `json:"items"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type insertedResponse struct {
	Inserted int `json:"inserted"`
}

type rankedBestsResponse struct {
	Data []models.RankedBest `json:"data"`
}
