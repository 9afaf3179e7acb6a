package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"stock-scan/config"
	app "stock-scan/internal/application"
	"stock-scan/internal/container"
	"stock-scan/internal/domain/entity"
)

const (
	exitOK = iota
	exitError
	exitNoImage
)

func main() {
	file := flag.String("file", "", "path to a shelf photo")
	camera := flag.Bool("camera", false, "take the photo with the camera instead of -file")
	flag.Parse()

	os.Exit(run(*file, *camera))
}

// run выполняет один анализ; deferred-очистка отрабатывает до os.Exit.
func run(file string, camera bool) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return exitError
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := container.NewLocalSession(cfg, file, logger)
	defer sess.Close()

	return scan(ctx, sess, camera, os.Stdout, os.Stderr)
}

// scan выбирает изображение, отправляет его и печатает детекции.
func scan(ctx context.Context, sess *app.Session, camera bool, stdout, stderr io.Writer) int {
	var err error
	if camera {
		_, err = sess.CaptureFromCamera(ctx)
	} else {
		_, err = sess.PickFromLibrary(ctx)
	}
	switch {
	case errors.Is(err, entity.ErrCancelled):
		fmt.Fprintln(stderr, "Selecciona o toma una foto primero.")
		return exitNoImage
	case errors.Is(err, entity.ErrPermissionDenied):
		fmt.Fprintln(stderr, "Se requiere acceso a la cámara para tomar fotos.")
		return exitError
	case err != nil:
		fmt.Fprintf(stderr, "image: %v\n", err)
		return exitError
	}

	req, err := sess.Submit(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "submit: %v\n", err)
		return exitError
	}

	st, err := sess.Await(ctx, req)
	if err != nil {
		fmt.Fprintf(stderr, "detect: %v\n", err)
		return exitError
	}
	if st.Phase == entity.PhaseFailed {
		if st.ErrKind.IsConnection() {
			fmt.Fprintln(stderr, "Error de conexión con el servidor.")
		} else {
			fmt.Fprintf(stderr, "image: %v\n", st.Err)
		}
		return exitError
	}

	fmt.Fprintf(stdout, "Total de objetos detectados: %d\n", st.Batch.Len())
	for _, d := range st.Batch {
		fmt.Fprintf(stdout, "%s - Confianza: %s\n", d.Label, strconv.FormatFloat(d.Confidence, 'f', -1, 64))
	}
	return exitOK
}
