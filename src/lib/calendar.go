package lib

import (
	"context"
	"os"
	"path"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func GAPICreateCalendarService(ctx context.Context, tok *oauth2.Token, conf *oauth2.Config) (svc *calendar.Service, err error) {
	if conf != nil {
		return calendar.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx, tok)))
	}
	secretsPath := os.Getenv("SECRETS_DIR")
	b, err := os.ReadFile(path.Join(secretsPath, "client_secret.json"))
	if err != nil {
		return nil, err
	}
	conf, err = google.ConfigFromJSON(b)
	if err != nil {
		return nil, err
	}
	cli := conf.Client(ctx, tok)
	return calendar.NewService(ctx, option.WithHTTPClient(cli))
}

func GAPIAddCalendar(name string, s *calendar.Service) (cal *calendar.Calendar, err error) {
	cli := s.Calendars.Insert(&calendar.Calendar{
		Summary: name,
	})
	return cli.Do()
}

func GAPIAddEvent(calId string, e *calendar.Event, s *calendar.Service) (err error) {
	cli := s.Events.Insert(calId, e)
	_, err = cli.Do()
	return err
}
