package main

import (
	"reel/internal/session"
	"reel/internal/vimeo"
)

type PlayerService struct {
	session *session.Service
}

func NewPlayerService(sessionService *session.Service) *PlayerService {
	return &PlayerService{session: sessionService}
}

// Render is called by the frontend with the full property set on every
// render of the player component.
func (s *PlayerService) Render(props vimeo.Props) (session.State, error) {
	return s.session.Render(props)
}

func (s *PlayerService) GetState() session.State {
	return s.session.GetState()
}
